package config

// Config carries the ambient settings for one invocation of the simulator:
// how to log, where to write output, and the tuning search that the CLI's
// -tuning flag runs in place of a single day. It is distinct from Scenario, which describes
// the park itself.
type Config struct {
	LogLevel    string      `yaml:"log_level"`
	OutputPath  string      `yaml:"output_path,omitempty"`
	OutputFmt   string      `yaml:"output_format,omitempty"` // json or jsonl
	ScenarioRef string      `yaml:"scenario,omitempty"`      // path to a Scenario YAML file
	Tuning      *TuningSpec `yaml:"tuning,omitempty"`
}

// TuningSpec configures an optional scenario-tuning pass: repeated runs that
// hill-climb a scenario parameter to optimize an objective statistic.
type TuningSpec struct {
	Objective     string  `yaml:"objective"` // e.g. "p95_wait_time", "total_completed_rides"
	Minimize      bool    `yaml:"minimize"`
	Parameter     string  `yaml:"parameter"` // dotted path, e.g. "attractions.Voltron.hourly_throughput"
	StepSize      float64 `yaml:"step_size"`
	MaxIterations int     `yaml:"max_iterations"`
	Trials        int     `yaml:"trials"` // max candidates scored concurrently per iteration
}

// Scenario is the complete description of one simulated park day: the
// attractions and activities on offer, the travel-time map between areas,
// the hourly arrival seed, the population's behavior archetypes, and the
// scalar knobs that govern passes and totals.
type Scenario struct {
	Attractions           []Attraction              `yaml:"attractions"`
	Activities            []Activity                `yaml:"activities"`
	ParkMap               map[string]map[string]int `yaml:"park_map"`
	ArrivalSeed           []ArrivalHour             `yaml:"arrival_seed"`
	Archetypes            map[string]Archetype      `yaml:"archetypes"`
	ArchetypeDistribution map[string]int            `yaml:"archetype_distribution"`
	Scalars               Scalars                   `yaml:"scalars"`
}

// Attraction is the static configuration of one ride.
type Attraction struct {
	Name                string  `yaml:"name"`
	RunTime             int     `yaml:"run_time"`
	ParkArea            string  `yaml:"park_area"`
	HourlyThroughput    int     `yaml:"hourly_throughput"`
	Popularity          int     `yaml:"popularity"`
	ExpeditedQueue      bool    `yaml:"expedited_queue"`
	ExpeditedQueueRatio float64 `yaml:"expedited_queue_ratio"`
	ChildEligible       bool    `yaml:"child_eligible"`
	AdultEligible       bool    `yaml:"adult_eligible"`
}

// Capacity returns the real-valued per-cycle capacity: hourly_throughput
// scaled down to one run_time cycle.
func (a Attraction) Capacity() float64 {
	return float64(a.HourlyThroughput) * float64(a.RunTime) / 60.0
}

// Activity is the static configuration of one dwell location.
type Activity struct {
	Name       string `yaml:"name"`
	ParkArea   string `yaml:"park_area"`
	Popularity int    `yaml:"popularity"`
	MeanTime   int    `yaml:"mean_time"`
}

// ArrivalHour is one ordered entry of the arrival seed: a labeled hour and
// the integer percent of the day's total arrivals assigned to it.
type ArrivalHour struct {
	Label   string `yaml:"label"`
	Percent int    `yaml:"percent"`
}

// Archetype is a labeled bundle of behavioral parameters shared by every
// agent sampled into it.
type Archetype struct {
	StayTimePreference   int     `yaml:"stay_time_preference"`
	AllowRepeats         bool    `yaml:"allow_repeats"`
	AttractionPreference float64 `yaml:"attraction_preference"`
	WaitThreshold        int     `yaml:"wait_threshold"`
	WaitDiscountBeta     float64 `yaml:"wait_discount_beta"`
	PercentNoChildRides  float64 `yaml:"percent_no_child_rides"`
	PercentNoAdultRides  float64 `yaml:"percent_no_adult_rides"`
	PercentNoPreference  float64 `yaml:"percent_no_preference"`
}

// Scalars holds the population-wide knobs that are not per-attraction or
// per-archetype.
type Scalars struct {
	TotalDailyAgents int     `yaml:"total_daily_agents"`
	PerfectArrivals  bool    `yaml:"perfect_arrivals"`
	ExpAbilityPct    float64 `yaml:"exp_ability_pct"`
	ExpWaitThreshold int     `yaml:"exp_wait_threshold"`
	ExpLimit         int     `yaml:"exp_limit"`
	RandomSeed       int64   `yaml:"random_seed"`
	EntranceParkArea string  `yaml:"entrance_park_area"`
}

// ParkCloseMinute returns the minute the park closes, derived from the
// number of hours in the arrival seed: (H-1)*60.
func (s Scenario) ParkCloseMinute() int {
	if len(s.ArrivalSeed) == 0 {
		return 0
	}
	return (len(s.ArrivalSeed) - 1) * 60
}
