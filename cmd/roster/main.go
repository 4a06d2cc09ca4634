// Roster 排班建模命令行
// 主程序入口

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paiban/rostering/internal/config"
	"github.com/paiban/rostering/internal/constraints"
	"github.com/paiban/rostering/internal/metrics"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/horizon"
	"github.com/paiban/rostering/pkg/scheduler/objective"
	"github.com/paiban/rostering/pkg/scheduler/scenario"
	"github.com/paiban/rostering/pkg/scheduler/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "排班建模与滚动求解",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.Init(cfg.LoggerConfig())
			return nil
		},
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Msg("命令执行失败")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		scenarioName string
		planFile     string
		months       int
		days         int
		budget       int
		timeLimit    time.Duration
		sense        string
		showMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "运行预置场景或方案文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("scenario") {
				cfg.Scenario = scenarioName
			}
			if flags.Changed("plan") {
				cfg.PlanFile = planFile
			}
			if flags.Changed("months") {
				cfg.Months = months
			}
			if flags.Changed("days") {
				cfg.Days = days
			}
			if flags.Changed("budget") {
				cfg.SolutionBudget = budget
			}
			if flags.Changed("time-limit") {
				cfg.Solver.TimeLimit = timeLimit
			}
			if flags.Changed("sense") {
				cfg.AffinitySense = sense
			}
			if flags.Changed("metrics") {
				cfg.Metrics = showMetrics
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			preset, err := loadPreset(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), preset, cfg.Metrics)
		},
	}

	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "预置场景名称 (ROSTER_SCENARIO)")
	cmd.Flags().StringVarP(&planFile, "plan", "f", "", "YAML 方案文件 (ROSTER_PLAN_FILE)")
	cmd.Flags().IntVar(&months, "months", 0, "滚动排班的月份数 (ROSTER_MONTHS)")
	cmd.Flags().IntVar(&days, "days", 0, "每个周期的天数 (ROSTER_DAYS)")
	cmd.Flags().IntVar(&budget, "budget", 0, "枚举解数量上限 (ROSTER_SOLUTION_BUDGET)")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "单周期求解时间上限 (ROSTER_SOLVER_TIME_LIMIT)")
	cmd.Flags().StringVar(&sense, "sense", "", "亲和度方向 rank_sum|mutual_preference (ROSTER_AFFINITY_SENSE)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "结束后输出指标 (ROSTER_METRICS)")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出预置场景",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := cfg.Params()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range scenario.Names() {
				p, err := scenario.Get(name, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %s [%s, %d 个周期]\n", p.Name, p.Description, p.Plan.Period, p.Periods)
			}
			return nil
		},
	}
}

func rulesCmd() *cobra.Command {
	var scenarioName string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "列出约束库，可按场景过滤",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := constraints.GetLibrary()
			if scenarioName != "" {
				defs = constraints.ForScenario(scenarioName)
			}
			out := cmd.OutOrStdout()
			for _, def := range defs {
				fmt.Fprintf(out, "%-24s %-10s %s\n", def.Name, def.Category, def.DisplayName)
				fmt.Fprintf(out, "  %s\n", def.Description)
				if def.Optional() {
					fmt.Fprintf(out, "  开关: %s\n", def.Switch)
				}
				for _, p := range def.Params {
					fmt.Fprintf(out, "  - %s (%s): %s", p.Name, p.Type, p.Description)
					if p.Default != "" {
						fmt.Fprintf(out, "，默认 %s", p.Default)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "只显示该场景使用的规则")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Roster v%s\nBuild: %s (%s)\n", Version, BuildTime, GitCommit)
		},
	}
}

func loadPreset(cfg *config.Config) (scenario.Preset, error) {
	var (
		preset scenario.Preset
		err    error
	)
	if cfg.PlanFile != "" {
		if cfg.Scenario != config.DefaultScenario {
			logger.Warn().
				Str("scenario", cfg.Scenario).
				Str("plan", cfg.PlanFile).
				Msg("同时指定了场景和方案文件，使用方案文件")
		}
		var f *config.PlanFile
		f, err = config.LoadPlanFile(cfg.PlanFile)
		if err != nil {
			return preset, err
		}
		preset, err = f.Preset()
	} else {
		var params scenario.Params
		params, err = cfg.Params()
		if err != nil {
			return preset, err
		}
		preset, err = scenario.Get(cfg.Scenario, params)
	}
	if err != nil {
		return preset, err
	}
	cfg.Apply(&preset)
	return preset, nil
}

func run(ctx context.Context, out io.Writer, preset scenario.Preset, showMetrics bool) error {
	log := logger.NewSchedulerLogger()
	recorder := metrics.NewRecorder(metrics.NewRegistry(), preset.Name)

	engine := solver.NewSATEngine().WithLogger(log)
	controller := horizon.New(engine, preset.Periods, preset.Planner(),
		horizon.WithLogger(log), horizon.WithRecorder(recorder))

	logger.Info().
		Str("scenario", preset.Name).
		Str("engine", engine.Name()).
		Int("periods", preset.Periods).
		Msg("开始排班")

	result, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	for i := range result.Periods {
		printOutcome(out, preset, &result.Periods[i])
	}
	fmt.Fprintf(out, "\n共 %d 个周期，%d 个有解，耗时 %s\n", len(result.Periods), result.SolvedCount(), result.Duration)

	if showMetrics {
		fmt.Fprintln(out)
		return recorder.Registry().WriteText(out)
	}
	return nil
}

func printOutcome(out io.Writer, preset scenario.Preset, o *horizon.PeriodOutcome) {
	fmt.Fprintf(out, "周期 %d [%s] 状态 %s\n", o.Index, o.RunID, o.Status)
	if o.Err != nil {
		fmt.Fprintf(out, "  错误: %v\n", o.Err)
	}

	rosters := o.Rosters
	if len(rosters) == 0 && o.Roster != nil {
		rosters = []*model.Roster{o.Roster}
	}
	requests := preset.Requests
	if requests != nil && requests.Validate(preset.Plan.Period) != nil {
		requests = nil
	}
	for _, r := range rosters {
		printRoster(out, r, requests)
	}

	if o.Roster != nil && preset.Requests != nil {
		if summary, err := objective.SummarizeRequests(preset.Requests, preset.Plan.Period, o.Roster); err == nil {
			fmt.Fprintf(out, "满足的班次请求 = %d (参考 %d，共 %d 个请求)\n", summary.Fulfilled, summary.Target, summary.Requested)
		}
	}
	if o.Workload != nil {
		fmt.Fprintf(out, "公平性: 基尼系数 %.3f，人均 %.2f 班，评分 %.1f\n", o.Workload.Gini, o.Workload.AvgShifts, o.Workload.OverallScore)
	}
	for _, v := range o.Violations {
		fmt.Fprintf(out, "  违反 %s: %s\n", v.ConstraintName, v.Message)
	}

	fmt.Fprintln(out, "统计")
	fmt.Fprintf(out, "  - 冲突        : %d\n", o.Statistics.Conflicts)
	fmt.Fprintf(out, "  - 分支        : %d\n", o.Statistics.Branches)
	fmt.Fprintf(out, "  - 耗时        : %s\n", o.Statistics.WallTime)
	fmt.Fprintf(out, "  - 找到的解    : %d\n", o.Solutions)
	if o.StopReason != "" {
		fmt.Fprintf(out, "  - 停止原因    : %s\n", o.StopReason)
	}
	fmt.Fprintln(out)
}

// printRoster 输出一个排班解，requests 非空时标注每个班次是否被请求
func printRoster(out io.Writer, r *model.Roster, requests model.ShiftRequests) {
	fmt.Fprintf(out, "解 %d (目标值 %d)\n", r.Index, r.Objective)
	for d := 0; d < r.Days; d++ {
		fmt.Fprintf(out, "第 %d 天\n", d)
		for w := 0; w < r.Workers; w++ {
			shifts := r.ShiftsOn(w, d)
			if len(shifts) == 0 {
				fmt.Fprintf(out, "  员工 %d 休息\n", w)
				continue
			}
			for _, s := range shifts {
				switch {
				case requests == nil:
					fmt.Fprintf(out, "  员工 %d 上班次 %d\n", w, s)
				case requests.Requested(w, d, s):
					fmt.Fprintf(out, "  员工 %d 上班次 %d（已请求）\n", w, s)
				default:
					fmt.Fprintf(out, "  员工 %d 上班次 %d（未请求）\n", w, s)
				}
				for _, p := range r.Pairings {
					if p.WorkerA == w && p.Day == d && p.Shift == s {
						fmt.Fprintf(out, "    与员工 %d 的亲和度: %d\n", p.WorkerB, p.Value)
					}
				}
			}
		}
	}
	if r.HasVacations() {
		for w := 0; w < r.Workers; w++ {
			fmt.Fprintf(out, "  员工 %d 假期 %d 天\n", w, r.VacationCount(w))
		}
	}
}
