// Package park implements the Park orchestrator: the single-threaded,
// cooperative-by-phase tick loop that advances one simulated day one minute
// at a time, sweeping arrivals, decisions, travel commits, ride/activity
// steps, timers, and a history snapshot in a fixed order.
package park

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/parksim/daysim/internal/activity"
	"github.com/parksim/daysim/internal/agent"
	"github.com/parksim/daysim/internal/archetype"
	"github.com/parksim/daysim/internal/arrival"
	"github.com/parksim/daysim/internal/attraction"
	"github.com/parksim/daysim/internal/history"
	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/logger"
	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

// Park holds everything one simulated day needs: the attraction and
// activity registries, the arrival schedule, the archetype table, the
// agent registry, and the history recorder. The orchestrator is the only
// mutator of any of this state; no lock discipline is needed within a
// single Park's tick.
type Park struct {
	scenario *config.Scenario

	attractions      []*attraction.Attraction
	attractionByName map[string]*attraction.Attraction
	activities       []*activity.Activity
	activityByName   map[string]*activity.Activity
	archetypes       *archetype.Table
	schedule         *arrival.Schedule
	parkMap          *ParkMap
	areas            map[string]*models.ParkArea

	agents     map[int]*models.AgentRecord
	agentOrder []int
	nextAgentID int

	baseSeed   int64
	processRNG *utils.RandSource

	history *history.Recorder
	log     *slog.Logger

	parkClose         int
	totalArrived      int
	totalLeft         int
	distributedPasses int
	redeemedPasses    int
}

// New builds a Park ready to run one simulated day from a validated
// scenario.
func New(scenario *config.Scenario, runID string) (*Park, error) {
	schedule, err := arrival.BuildSchedule(
		scenario.ArrivalSeed,
		scenario.Scalars.TotalDailyAgents,
		scenario.Scalars.PerfectArrivals,
		scenario.Scalars.RandomSeed,
	)
	if err != nil {
		return nil, fmt.Errorf("building arrival schedule: %w", err)
	}

	archetypes, err := archetype.NewTable(scenario.Archetypes, scenario.ArchetypeDistribution)
	if err != nil {
		return nil, fmt.Errorf("building archetype table: %w", err)
	}

	p := &Park{
		scenario:         scenario,
		attractionByName: make(map[string]*attraction.Attraction, len(scenario.Attractions)),
		activityByName:   make(map[string]*activity.Activity, len(scenario.Activities)),
		archetypes:       archetypes,
		schedule:         schedule,
		parkMap:          NewParkMap(scenario.ParkMap),
		areas:            make(map[string]*models.ParkArea),
		agents:           make(map[int]*models.AgentRecord),
		baseSeed:         scenario.Scalars.RandomSeed,
		processRNG:       utils.NewRandSource(scenario.Scalars.RandomSeed),
		history:          history.NewRecorder(0),
		log:              logger.ForRun(runID),
		parkClose:        schedule.ParkClose(),
	}

	for _, cfg := range scenario.Attractions {
		a := attraction.New(cfg)
		p.attractions = append(p.attractions, a)
		p.attractionByName[a.Name] = a
		p.area(a.ParkArea)
	}
	for _, cfg := range scenario.Activities {
		act := activity.New(cfg)
		p.activities = append(p.activities, act)
		p.activityByName[act.Name] = act
		p.area(act.ParkArea)
	}
	p.area(scenario.Scalars.EntranceParkArea)

	return p, nil
}

func (p *Park) area(name string) *models.ParkArea {
	if a, ok := p.areas[name]; ok {
		return a
	}
	a := models.NewParkArea(name)
	p.areas[name] = a
	return a
}

// ParkClose returns the minute the park closes for the day.
func (p *Park) ParkClose() int {
	return p.parkClose
}

// History returns the run's metrics recorder.
func (p *Park) History() *history.Recorder {
	return p.history
}

// Agents returns the full agent registry, keyed by id, built over the
// course of the run so far.
func (p *Park) Agents() map[int]*models.AgentRecord {
	return p.agents
}

// Totals returns the running (arrived, left, distributed, redeemed) counts.
func (p *Park) Totals() (arrived, left, distributed, redeemed int) {
	return p.totalArrived, p.totalLeft, p.distributedPasses, p.redeemedPasses
}

// Attractions returns the attraction registry in scenario order.
func (p *Park) Attractions() []*attraction.Attraction {
	return p.attractions
}

// Activities returns the activity registry in scenario order.
func (p *Park) Activities() []*activity.Activity {
	return p.activities
}

// RunDay advances the park from minute 0 through the last minute of the
// closing hour (park close + 59), one tick per minute of every hour in the
// arrival seed. No agent is admitted from park close on, so the closing hour
// lets agents still queueing, riding or browsing at close finish and leave.
// It checks ctx once per tick so a caller running many trials can cancel a
// long batch between days. The day's current minute is tracked on a
// MinuteClock rather than a bare loop counter, matching how every other
// time-driven quantity in the simulator (pass delays, return windows) is
// expressed in minutes rather than wall-clock time.
func (p *Park) RunDay(ctx context.Context) error {
	clock := utils.NewMinuteClock(0)
	for clock.Now() < p.parkClose+60 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		t := clock.Now()
		if err := p.Step(t); err != nil {
			return fmt.Errorf("minute %d: %w", t, err)
		}
		clock.Advance(1)
	}
	return nil
}

// Step advances the park by exactly one minute, running the fixed
// ten-sweep tick: admit arrivals, collect the idle set, refresh attraction
// estimates, run decisions, commit arrivals, step attractions and
// activities, age timers, and snapshot totals into history.
func (p *Park) Step(time int) error {
	p.admitArrivals(time)

	idle := p.idleAgents()

	for _, a := range p.attractions {
		a.UpdateWaitTimes()
		a.UpdateExpReturnWindow(time, p.parkClose)
	}

	if err := p.decide(idle, time); err != nil {
		return err
	}

	if err := p.commitArrivals(time); err != nil {
		return err
	}

	p.stepAttractions(time)
	p.stepActivities(time)
	p.ageTimers()

	for _, a := range p.attractions {
		p.history.RecordAttraction(time, a.Name, a.QueueLength(), a.WaitTime(), a.ExpQueueLength(), a.ExpWaitTime(), a.ExpReturnTime())
	}
	for _, act := range p.activities {
		p.history.RecordActivity(time, act.Name, act.Population())
	}

	active := 0
	for _, id := range p.agentOrder {
		if p.agents[id].WithinPark {
			active++
		}
	}
	p.history.RecordGlobal(time, active, p.totalLeft, p.distributedPasses, p.redeemedPasses)

	return nil
}

func (p *Park) admitArrivals(time int) {
	if time >= p.parkClose {
		return
	}
	n := p.schedule.At(time)
	for i := 0; i < n; i++ {
		p.admitAgent(time)
	}
}

func (p *Park) admitAgent(time int) {
	scalars := p.scenario.Scalars

	profile, err := p.archetypes.Sample(p.processRNG.Float64())
	if err != nil {
		p.log.Warn("archetype sampling failed, skipping arrival", "error", err)
		return
	}
	ageClass := profile.SampleAgeClass(p.processRNG.Float64())
	passAbility := p.processRNG.BernoulliBool(scalars.ExpAbilityPct)

	id := p.nextAgentID
	p.nextAgentID++

	rec := agent.New(id, ageClass, profile, passAbility, scalars.ExpWaitThreshold, scalars.ExpLimit)
	rec.WithinPark = true
	rec.ArrivalTime = time
	moveAgent(rec, models.LocationGate, scalars.EntranceParkArea)
	rec.CurrentAction = models.ActionIdling

	p.agents[id] = rec
	p.agentOrder = append(p.agentOrder, id)
	p.totalArrived++
	p.area(scalars.EntranceParkArea).Enter(id)
}

func (p *Park) idleAgents() []*models.AgentRecord {
	idle := make([]*models.AgentRecord, 0)
	for _, id := range p.agentOrder {
		rec := p.agents[id]
		if rec.WithinPark && rec.CurrentAction == models.ActionIdling {
			idle = append(idle, rec)
		}
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].ID < idle[j].ID })
	return idle
}

func (p *Park) decide(idle []*models.AgentRecord, time int) error {
	for _, rec := range idle {
		d, err := agent.Decide(rec, time, p.parkClose, p.baseSeed, p.processRNG, p.scenario.Scalars.EntranceParkArea, p.attractions, p.activities, p.parkMap)
		if err != nil {
			return err
		}
		travel, err := p.parkMap.TravelTime(rec.CurrentParkArea, d.DestArea)
		if err != nil {
			return fmt.Errorf("agent %d: %w", rec.ID, err)
		}
		rec.CurrentAction = d.Action
		rec.Destination = d.Destination
		rec.TimeToDestination = travel
	}
	return nil
}

func (p *Park) commitArrivals(time int) error {
	for _, id := range p.agentOrder {
		rec := p.agents[id]
		if !rec.WithinPark || rec.TimeToDestination != 0 {
			continue
		}
		switch rec.CurrentAction {
		case models.ActionLeaving:
			p.commitLeave(rec, time)
		case models.ActionTraveling:
			if err := p.commitTravel(rec); err != nil {
				return err
			}
		case models.ActionRedeemingPass:
			if err := p.commitRedeem(rec); err != nil {
				return err
			}
		case models.ActionGettingPass:
			if err := p.commitGetPass(rec, time); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Park) commitLeave(rec *models.AgentRecord, time int) {
	p.area(rec.CurrentParkArea).Leave(rec.ID)
	rec.WithinPark = false
	rec.ExitTime = time
	rec.CurrentLocation = models.LocationOutsidePark

	for _, h := range rec.Holdings {
		if a, ok := p.attractionByName[h.AttractionName]; ok {
			a.SkipPass()
		}
	}
	rec.Holdings = nil

	p.totalLeft++
	rec.AddLogLine(fmt.Sprintf("t=%d: left the park", time))
}

func (p *Park) commitTravel(rec *models.AgentRecord) error {
	if a, ok := p.attractionByName[rec.Destination]; ok {
		p.area(rec.CurrentParkArea).Leave(rec.ID)
		moveAgent(rec, a.Name, a.ParkArea)
		rec.CurrentAction = models.ActionQueueing
		a.AddToQueue(rec.ID)
		p.area(a.ParkArea).Enter(rec.ID)
		return nil
	}
	if act, ok := p.activityByName[rec.Destination]; ok {
		p.area(rec.CurrentParkArea).Leave(rec.ID)
		moveAgent(rec, act.Name, act.ParkArea)
		rec.CurrentAction = models.ActionBrowsing
		act.AddToActivity(rec.ID, p.processRNG)
		rec.TimesVisitedActivity[act.Name]++
		p.area(act.ParkArea).Enter(rec.ID)
		return nil
	}
	return fmt.Errorf("agent %d: unknown travel destination %q", rec.ID, rec.Destination)
}

func (p *Park) commitRedeem(rec *models.AgentRecord) error {
	a, ok := p.attractionByName[rec.Destination]
	if !ok {
		return fmt.Errorf("agent %d: unknown attraction %q for pass redemption", rec.ID, rec.Destination)
	}
	if _, held := rec.HasPass(rec.Destination); !held {
		return fmt.Errorf("agent %d: invariant violation: redeeming a pass for %q it no longer holds", rec.ID, rec.Destination)
	}
	p.area(rec.CurrentParkArea).Leave(rec.ID)
	moveAgent(rec, a.Name, a.ParkArea)
	rec.CurrentAction = models.ActionQueueing
	a.AddToExpQueue(rec.ID)
	p.area(a.ParkArea).Enter(rec.ID)
	return nil
}

func (p *Park) commitGetPass(rec *models.AgentRecord, time int) error {
	a, ok := p.attractionByName[rec.Destination]
	if !ok {
		return fmt.Errorf("agent %d: unknown attraction %q for pass acquisition", rec.ID, rec.Destination)
	}
	returnTime := a.IssuePass()
	delay := utils.Max(0, returnTime-time)
	rec.Holdings = append(rec.Holdings, models.PassHolding{AttractionName: a.Name, RemainingDelay: delay})
	p.distributedPasses++

	p.area(rec.CurrentParkArea).Leave(rec.ID)
	moveAgent(rec, a.Name, a.ParkArea)
	rec.CurrentAction = models.ActionIdling
	p.area(a.ParkArea).Enter(rec.ID)

	rec.AddLogLine(fmt.Sprintf("t=%d: acquired a pass for %s, returns by %d", time, a.Name, returnTime))
	return nil
}

func (p *Park) stepAttractions(time int) {
	for _, a := range p.attractions {
		exiting, loaded := a.Step(time, p.parkClose)
		for _, id := range exiting {
			rec := p.agents[id]
			rec.TimesCompleted[a.Name]++
			rec.CurrentAction = models.ActionIdling
			rec.CurrentLocation = a.Name
			rec.TimeSpentAtCurrentLoc = 0
			rec.AddLogLine(fmt.Sprintf("t=%d: exited %s", time, a.Name))
		}
		for _, id := range loaded {
			rec := p.agents[id]
			if rec.CurrentAction == models.ActionBrowsing {
				if act, ok := p.activityByName[rec.CurrentLocation]; ok {
					act.ForceExit(id)
				}
			}
			rec.CurrentAction = models.ActionRiding
			if idx, held := rec.HasPass(a.Name); held {
				_ = idx
				rec.RemovePass(a.Name)
				a.RedeemPass()
				p.redeemedPasses++
			}
		}
	}
}

func (p *Park) stepActivities(time int) {
	for _, act := range p.activities {
		done := act.Step()
		for _, id := range done {
			rec := p.agents[id]
			rec.TimeSpentAtActivity[act.Name] += rec.TimeSpentAtCurrentLoc
			rec.CurrentAction = models.ActionIdling
			rec.TimeSpentAtCurrentLoc = 0
			rec.AddLogLine(fmt.Sprintf("t=%d: finished browsing %s", time, act.Name))
		}
	}
}

func (p *Park) ageTimers() {
	for _, id := range p.agentOrder {
		rec := p.agents[id]
		if !rec.WithinPark {
			continue
		}
		rec.TimeSpentAtCurrentLoc++
		for i := range rec.Holdings {
			if rec.Holdings[i].RemainingDelay > -1 {
				rec.Holdings[i].RemainingDelay--
			}
		}
		if rec.TimeToDestination > 0 {
			rec.TimeToDestination--
		}
	}
	for _, a := range p.attractions {
		a.PassTime()
	}
}

func moveAgent(rec *models.AgentRecord, location, area string) {
	rec.CurrentLocation = location
	rec.CurrentParkArea = area
	rec.TimeSpentAtCurrentLoc = 0
}
