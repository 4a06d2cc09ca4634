// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/paiban/rostering/pkg/errors"
	"github.com/paiban/rostering/pkg/logger"
	"github.com/paiban/rostering/pkg/model"
	"github.com/paiban/rostering/pkg/scheduler/scenario"
)

const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "ROSTER_"
	// DefaultScenario 未指定时运行的预置场景，与 envDefault 保持一致
	DefaultScenario = scenario.NameBasic
)

var validate = validator.New()

// Config 命令行程序配置
type Config struct {
	Log struct {
		Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error fatal"`
		Format string `env:"FORMAT" envDefault:"console" validate:"oneof=console json"`
	} `envPrefix:"LOG_"`

	// Scenario 预置场景名称，PlanFile 非空时忽略
	Scenario string `env:"SCENARIO" envDefault:"basic"`
	PlanFile string `env:"PLAN_FILE"`

	Solver struct {
		TimeLimit time.Duration `env:"TIME_LIMIT" envDefault:"30s" validate:"gte=0"`
	} `envPrefix:"SOLVER_"`

	// SolutionBudget 枚举模式的解数量上限，0 表示沿用场景默认值
	SolutionBudget int    `env:"SOLUTION_BUDGET" envDefault:"0" validate:"gte=0"`
	Months         int    `env:"MONTHS" envDefault:"5" validate:"gt=0"`
	Days           int    `env:"DAYS" envDefault:"30" validate:"gt=0"`
	AffinitySense  string `env:"AFFINITY_SENSE" envDefault:"rank_sum" validate:"oneof=rank_sum mutual_preference"`

	// Metrics 运行结束后是否输出指标
	Metrics bool `env:"METRICS" envDefault:"false"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom 从给定的变量表加载配置（测试用）
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoggerConfig 返回日志配置
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	return cfg
}

// Sense 返回亲和度方向
func (c *Config) Sense() (model.AffinitySense, error) {
	return ParseSense(c.AffinitySense)
}

// Params 返回选择预置场景的参数
func (c *Config) Params() (scenario.Params, error) {
	sense, err := c.Sense()
	if err != nil {
		return scenario.Params{}, err
	}
	return scenario.Params{Days: c.Days, Months: c.Months, Sense: sense}, nil
}

// Apply 把求解相关配置覆盖到场景上
func (c *Config) Apply(p *scenario.Preset) {
	if c.Solver.TimeLimit > 0 {
		p.Plan.Solve.TimeLimit = c.Solver.TimeLimit
	}
	if c.SolutionBudget > 0 {
		p.Plan.Budget = c.SolutionBudget
	}
}

// ParseSense 解析亲和度方向名称
func ParseSense(name string) (model.AffinitySense, error) {
	switch name {
	case "", model.AffinityRankSum.String():
		return model.AffinityRankSum, nil
	case model.AffinityMutualPreference.String():
		return model.AffinityMutualPreference, nil
	default:
		return 0, apperrors.InvalidInput("affinitySense", fmt.Sprintf("未知的亲和度方向 %q", name))
	}
}
