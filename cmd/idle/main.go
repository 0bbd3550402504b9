package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/runlog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
	"github.com/eseidel/better-idle-sub000/internal/solver"
	"github.com/eseidel/better-idle-sub000/internal/trace"
	"github.com/eseidel/better-idle-sub000/internal/tuning"
)

var (
	dataDir    string
	tuningFile string
	stateFile  string

	goalSpec    string
	maxNodes    int
	showProfile bool
	maxShow     int

	seed       int64
	watchTUI   bool
	showDiff   bool
	tracePath  string
	runlogPath string
	savePath   string

	showAll      bool
	schemaDir    string
	checkSchemas bool
	historyLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "idle",
		Short: "Idle Economy Goal Planner",
		Long: `Plans and executes routes to economic goals in the idle game:
which activity to run, when to sell, which upgrades to buy and in what
order, so the goal arrives in the fewest expected ticks.`,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Path to catalog data directory (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVarP(&tuningFile, "tuning", "t", "", "Path to a yaml tuning override file")
	rootCmd.PersistentFlags().StringVarP(&stateFile, "state", "s", "", "Path to a saved player state (default: fresh level-1 player)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Plan a route to a goal without executing it",
		Run:   runSolve,
	}
	solveCmd.Flags().StringVarP(&goalSpec, "goal", "g", "", "Goal: gold:<amount> or skill:<name>:<level>")
	solveCmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "Search node budget (default: tuning)")
	solveCmd.Flags().BoolVarP(&showProfile, "profile", "p", false, "Print search statistics")
	solveCmd.Flags().IntVar(&maxShow, "steps", 40, "Plan steps to print, 0 for all")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute toward a goal against the randomized simulation, replanning at boundaries",
		Run:   runRun,
	}
	runCmd.Flags().StringVarP(&goalSpec, "goal", "g", "", "Goal: gold:<amount> or skill:<name>:<level>")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Simulation random seed")
	runCmd.Flags().BoolVarP(&watchTUI, "watch", "w", false, "Watch the run live")
	runCmd.Flags().BoolVar(&showDiff, "diff", false, "Diff the single-shot plan against what actually ran")
	runCmd.Flags().BoolVarP(&showProfile, "profile", "p", false, "Print run statistics")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write diagnostic events to a compressed trace file")
	runCmd.Flags().StringVar(&runlogPath, "runlog", "", "Record the run in a run log database")
	runCmd.Flags().StringVar(&savePath, "save", "", "Write the final player state to a file")

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Show expected per-tick rates for every action at the current state",
		Run:   runRates,
	}
	ratesCmd.Flags().BoolVar(&showAll, "all", false, "Include locked and stalled actions")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the game content: actions, items and upgrades",
		Run:   runCatalog,
	}
	catalogCmd.Flags().BoolVar(&checkSchemas, "validate", false, "Validate the data directory against the JSON schemas")
	catalogCmd.Flags().StringVar(&schemaDir, "schemas", "schemas", "Path to the JSON schema directory")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recorded runs",
		Run:   runHistory,
	}
	historyCmd.Flags().StringVar(&runlogPath, "runlog", "runs.db", "Run log database")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Runs to show")

	rootCmd.AddCommand(solveCmd, runCmd, ratesCmd, catalogCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mustCatalog() *catalog.Catalog {
	if dataDir == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(dataDir)
	if err != nil {
		color.Red("Error loading catalog: %v", err)
		os.Exit(1)
	}
	return cat
}

func mustTuning() tuning.Tuning {
	if tuningFile == "" {
		return tuning.Default()
	}
	tune, err := tuning.Load(tuningFile)
	if err != nil {
		color.Red("Error loading tuning: %v", err)
		os.Exit(1)
	}
	return tune
}

func mustState(cat *catalog.Catalog) sim.State {
	if stateFile == "" {
		return sim.NewState(cat)
	}
	s, err := sim.LoadState(cat, stateFile)
	if err != nil {
		color.Red("Error loading state: %v", err)
		os.Exit(1)
	}
	return s
}

func mustGoal(cat *catalog.Catalog) solver.Goal {
	if goalSpec == "" {
		color.Red("Error: --goal is required (gold:<amount> or skill:<name>:<level>)")
		os.Exit(1)
	}
	goal, err := solver.ParseGoal(cat, goalSpec)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	return goal
}

func runSolve(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgYellow)

	cat := mustCatalog()
	tune := mustTuning()
	s := mustState(cat)
	goal := mustGoal(cat)

	titleColor.Printf("\n🎯 Goal: %s\n", goal.Describe())
	infoColor.Printf("📦 Catalog: %d actions, %d items, %d upgrades\n\n",
		len(cat.Actions()), len(cat.Items()), len(cat.Upgrades()))

	p := solver.New(cat, tune, nil)
	res := p.Solve(context.Background(), s, goal, solver.Options{
		MaxExpandedNodes: maxNodes,
		CollectProfile:   showProfile,
	})
	if !res.Success() {
		color.Red("No plan found: %v", res.Failure)
		if showProfile && res.Profile != nil {
			fmt.Print(res.Profile.Summary())
		}
		os.Exit(1)
	}

	successColor.Printf("✓ Plan found: %s of projected play\n\n", formatTicks(res.Plan.TotalTicks))
	fmt.Print(res.Plan.PrettyPrint(cat, maxShow))

	fmt.Printf("\n⏱️  Projected time: %s (%d ticks)\n", formatTicks(res.Plan.TotalTicks), res.Plan.TotalTicks)
	fmt.Printf("💰 Projected gold: %.0f\n", res.State.Gold)
	if skill, ok := goal.RelevantSkill(); ok {
		fmt.Printf("📈 Projected %s level: %d\n", skill, res.State.SkillLevel(skill))
	}

	if showProfile && res.Profile != nil {
		titleColor.Println("\n📊 Search profile:")
		fmt.Print(res.Profile.Summary())
	}
}

func runRun(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	infoColor := color.New(color.FgYellow)

	cat := mustCatalog()
	tune := mustTuning()
	s := mustState(cat)
	goal := mustGoal(cat)

	var pubs []solver.Publisher
	var tw *trace.Writer
	if tracePath != "" {
		w, err := trace.NewWriter(tracePath)
		if err != nil {
			color.Red("Error opening trace: %v", err)
			os.Exit(1)
		}
		tw = w
		pubs = append(pubs, w.Publisher())
	}

	rng := rand.New(rand.NewSource(seed))
	start := s.Clone()

	var run solver.GoalRun
	var err error
	if watchTUI {
		run, err = runWatched(context.Background(), cat, tune, s, goal, rng, pubs)
	} else {
		titleColor.Printf("\n🎯 Goal: %s (seed %d)\n\n", goal.Describe(), seed)
		p := solver.New(cat, tune, fanOut(pubs))
		run, err = p.SolveToGoal(context.Background(), s, goal, rng)
	}
	if tw != nil {
		if cerr := tw.Close(); cerr != nil {
			color.Yellow("Warning: closing trace: %v", cerr)
		} else {
			infoColor.Printf("📼 Trace written to %s\n", tracePath)
		}
	}
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	printRunSummary(goal, run)

	if showProfile && run.Profile != nil {
		titleColor.Println("\n📊 Run profile:")
		fmt.Print(run.Profile.Summary())
	}
	if showDiff {
		printPlanDiff(cat, tune, start, goal, run)
	}
	if runlogPath != "" {
		store, err := runlog.Open(runlogPath)
		if err != nil {
			color.Red("Error opening run log: %v", err)
			os.Exit(1)
		}
		rec, err := store.Append(runlogRecord(goal, seed, run))
		_ = store.Close()
		if err != nil {
			color.Red("Error recording run: %v", err)
			os.Exit(1)
		}
		infoColor.Printf("🗒️  Run recorded as %s\n", rec.ID)
	}
	if savePath != "" {
		if err := sim.SaveState(savePath, run.FinalState); err != nil {
			color.Red("Error saving state: %v", err)
			os.Exit(1)
		}
		infoColor.Printf("💾 Final state saved to %s\n", savePath)
	}
}

func printRunSummary(goal solver.Goal, run solver.GoalRun) {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)

	if run.Reached {
		successColor.Printf("✅ %s after %s\n\n", goal.Describe(), formatTicks(run.ActualTicks))
	} else {
		errorColor.Printf("❌ %s not reached\n\n", goal.Describe())
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Segments", "Replans", "Unexpected", "Deaths", "Planned", "Actual"}),
	)
	_ = table.Append([]string{
		fmt.Sprintf("%d", len(run.Segments)),
		fmt.Sprintf("%d", run.Replans),
		fmt.Sprintf("%d", run.Unexpected),
		fmt.Sprintf("%d", run.Deaths),
		formatTicks(run.PlannedTicks),
		formatTicks(run.ActualTicks),
	})
	_ = table.Render()

	fmt.Printf("\n💰 Gold: %.0f\n", run.FinalState.Gold)
	if skill, ok := goal.RelevantSkill(); ok {
		fmt.Printf("📈 %s level: %d\n", skill, run.FinalState.SkillLevel(skill))
	}
}

func printPlanDiff(cat *catalog.Catalog, tune tuning.Tuning, start sim.State, goal solver.Goal, run solver.GoalRun) {
	titleColor := color.New(color.FgCyan, color.Bold)

	p := solver.New(cat, tune, nil)
	res := p.Solve(context.Background(), start, goal, solver.Options{})
	if !res.Success() {
		color.Yellow("Warning: no single-shot plan to diff against: %v", res.Failure)
		return
	}
	text, err := planDiff(cat, res.Plan, run.Plan)
	if err != nil {
		color.Yellow("Warning: diff failed: %v", err)
		return
	}
	titleColor.Println("\n📝 Planned vs executed:")
	if text == "" {
		fmt.Println("   plans are identical")
		return
	}
	fmt.Print(text)
}

// planDiff renders two plans step by step and unified-diffs them. An empty
// string means the plans agree.
func planDiff(cat *catalog.Catalog, planned, executed solver.Plan) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        planLines(cat, planned),
		B:        planLines(cat, executed),
		FromFile: "planned",
		ToFile:   "executed",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

func planLines(cat *catalog.Catalog, p solver.Plan) []string {
	lines := make([]string, 0, len(p.Steps))
	for _, st := range p.Steps {
		lines = append(lines, st.Describe(cat)+"\n")
	}
	return lines
}

// runlogRecord flattens a finished run for the run log.
func runlogRecord(goal solver.Goal, seed int64, run solver.GoalRun) runlog.Record {
	rec := runlog.Record{
		Goal:         goal.Describe(),
		Seed:         seed,
		Reached:      run.Reached,
		PlannedTicks: run.PlannedTicks,
		ActualTicks:  run.ActualTicks,
		Deaths:       run.Deaths,
		Replans:      run.Replans,
		Unexpected:   run.Unexpected,
		Segments:     len(run.Segments),
	}
	if run.Profile != nil {
		if data, err := json.Marshal(run.Profile); err == nil {
			rec.ProfileJSON = string(data)
		}
	}
	return rec
}

// fanOut joins publishers into one; nil when there are none.
func fanOut(pubs []solver.Publisher) solver.Publisher {
	switch len(pubs) {
	case 0:
		return nil
	case 1:
		return pubs[0]
	}
	return solver.PublisherFunc(func(ctx context.Context, e solver.Event) {
		for _, p := range pubs {
			p.Publish(ctx, e)
		}
	})
}

func runRates(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)

	cat := mustCatalog()
	s := mustState(cat)

	titleColor.Println("\n📊 Expected rates at the current state:")

	type row struct {
		action *catalog.Action
		rates  sim.Rates
		value  float64
	}
	var rows []row
	for _, a := range cat.Actions() {
		r := sim.ExpectedRatesFor(cat, s, a.ID)
		if r.IsZero() && !showAll {
			continue
		}
		rows = append(rows, row{action: a, rates: r, value: solver.ValuePerTick(cat, s, r)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].value > rows[j].value })

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Action", "Skill", "Lvl", "Ticks/Rep", "XP/Tick", "Gold/Tick", "Value/Tick"}),
	)
	for _, rw := range rows {
		_ = table.Append([]string{
			rw.action.Name,
			string(rw.action.Skill),
			fmt.Sprintf("%d", rw.action.UnlockLevel),
			fmt.Sprintf("%.1f", s.EffectiveTicks(cat, rw.action)),
			fmt.Sprintf("%.3f", rw.rates.SkillXP[rw.action.Skill]),
			fmt.Sprintf("%.3f", solver.GoldValueRate(cat, rw.rates)),
			fmt.Sprintf("%.3f", rw.value),
		})
	}
	_ = table.Render()

	if !showAll {
		fmt.Println("\nLocked and stalled actions are hidden; pass --all to include them.")
	}
}

func runCatalog(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)

	cat := mustCatalog()

	if checkSchemas {
		if dataDir == "" {
			color.Red("Error: --validate needs --data to point at a data directory")
			os.Exit(1)
		}
		if err := catalog.ValidateDir(dataDir, schemaDir); err != nil {
			color.Red("Schema validation failed: %v", err)
			os.Exit(1)
		}
		successColor.Printf("✅ %s matches the schemas in %s\n", dataDir, schemaDir)
	}

	titleColor.Printf("\n📦 Actions (%d):\n", len(cat.Actions()))
	actions := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Skill", "Lvl", "Ticks", "XP", "Gold", "Fail", "Inputs", "Outputs"}),
	)
	for _, a := range cat.Actions() {
		_ = actions.Append([]string{
			string(a.ID),
			string(a.Skill),
			fmt.Sprintf("%d", a.UnlockLevel),
			fmt.Sprintf("%d", a.BaseTicks),
			fmt.Sprintf("%.0f", a.XP),
			fmt.Sprintf("%.0f", a.Gold),
			fmt.Sprintf("%.0f%%", a.FailureChance*100),
			formatQuantities(a.Inputs),
			formatQuantities(a.Outputs),
		})
	}
	_ = actions.Render()

	titleColor.Printf("\n🎒 Items (%d):\n", len(cat.Items()))
	items := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Name", "Sell"}),
	)
	for _, it := range cat.Items() {
		_ = items.Append([]string{string(it.ID), it.Name, fmt.Sprintf("%.0f", it.SellPrice)})
	}
	_ = items.Render()

	titleColor.Printf("\n🛠️  Upgrades (%d):\n", len(cat.Upgrades()))
	upgrades := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Cost", "Effect", "Requires"}),
	)
	for _, u := range cat.Upgrades() {
		_ = upgrades.Append([]string{
			string(u.ID),
			fmt.Sprintf("%.0f", u.Cost),
			upgradeEffect(u),
			string(u.Requires),
		})
	}
	_ = upgrades.Render()
}

func upgradeEffect(u *catalog.Upgrade) string {
	if u.BankSlots > 0 {
		return fmt.Sprintf("+%d bank slots", u.BankSlots)
	}
	return fmt.Sprintf("%s %.0f%% faster", u.Skill, u.SpeedBonus*100)
}

func formatQuantities(qs []catalog.ItemQuantity) string {
	if len(qs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(qs))
	for _, q := range qs {
		parts = append(parts, fmt.Sprintf("%dx %s", q.Quantity, q.Item))
	}
	return strings.Join(parts, ", ")
}

func runHistory(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)

	store, err := runlog.Open(runlogPath)
	if err != nil {
		color.Red("Error opening run log: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	recs, err := store.Recent(historyLimit)
	if err != nil {
		color.Red("Error reading run log: %v", err)
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Println("No recorded runs.")
		return
	}

	titleColor.Printf("\n🗒️  Last %d runs:\n", len(recs))
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"When", "Goal", "Seed", "Reached", "Segments", "Replans", "Deaths", "Time"}),
	)
	for _, rec := range recs {
		reached := "❌"
		if rec.Reached {
			reached = "✅"
		}
		_ = table.Append([]string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Goal,
			fmt.Sprintf("%d", rec.Seed),
			reached,
			fmt.Sprintf("%d", rec.Segments),
			fmt.Sprintf("%d", rec.Replans),
			fmt.Sprintf("%d", rec.Deaths),
			formatTicks(rec.ActualTicks),
		})
	}
	_ = table.Render()
}

// formatTicks renders a tick count as wall-clock time at ten ticks per second.
func formatTicks(ticks int64) string {
	seconds := ticks / 10
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
