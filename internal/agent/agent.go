// Package agent implements the per-minute decision procedure: the leave
// check, pass-redemption shortcut, eligibility filter, utility scoring,
// softmax selection, and the sample-then-validate resampling loop that
// turns an idling agent into a traveling, pass-seeking, or pass-redeeming
// one.
package agent

import (
	"fmt"
	"math"

	"github.com/parksim/daysim/internal/activity"
	"github.com/parksim/daysim/internal/archetype"
	"github.com/parksim/daysim/internal/attraction"
	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

// ParkMap resolves the one-way travel time, in minutes, between two named
// park areas, including the same-area (intra-area walk) entry.
type ParkMap interface {
	TravelTime(from, to string) (int, error)
}

// Decision is the outcome of one minute's decision procedure: the intent
// an idling agent has formed. The orchestrator resolves Destination/DestArea
// into a travel time and commits the action once the agent arrives.
type Decision struct {
	Action      models.AgentAction
	Destination string
	DestArea    string
}

// New creates an agent record from its archetype-derived behavior profile.
// The record starts at the gate, idling, with empty history.
func New(id int, ageClass models.AgentAgeClass, profile archetype.Profile, passAbility bool, expWaitThreshold, expLimit int) *models.AgentRecord {
	return &models.AgentRecord{
		ID:                   id,
		AgeClass:             ageClass,
		Archetype:            profile.Name,
		StayTimePreference:   profile.StayTimePreference,
		AllowRepeats:         profile.AllowRepeats,
		AttractionPreference: profile.AttractionPreference,
		WaitThreshold:        profile.WaitThreshold,
		WaitDiscountBeta:     profile.WaitDiscountBeta,
		PassAbility:          passAbility,
		ExpWaitThreshold:     expWaitThreshold,
		ExpLimit:             expLimit,
		CurrentLocation:      models.LocationGate,
		CurrentAction:        models.ActionIdling,
		TimesCompleted:       make(map[string]int),
		TimesVisitedActivity: make(map[string]int),
		TimeSpentAtActivity:  make(map[string]int),
	}
}

// Decide runs the full decision procedure for one idling agent and returns
// the intent the orchestrator must resolve into a travel time.
//
// processRNG drives every coinflip, softmax draw, and weighted choice in
// this call; the leave check alone draws from its own fresh stream seeded
// with (baseSeed, agent id, time), so a replay reproduces it exactly
// regardless of how many other draws processRNG has served so far.
func Decide(
	rec *models.AgentRecord,
	time, parkClose int,
	baseSeed int64,
	processRNG *utils.RandSource,
	entranceArea string,
	attractions []*attraction.Attraction,
	activities []*activity.Activity,
	parkMap ParkMap,
) (Decision, error) {
	// (a) Leave decision.
	if time >= parkClose {
		rec.AddLogLine(fmt.Sprintf("t=%d: park is closed, leaving", time))
		return Decision{Action: models.ActionLeaving, Destination: models.LocationGate, DestArea: entranceArea}, nil
	}
	if time > rec.ArrivalTime {
		leaveRNG := utils.NewRandSource(baseSeed + int64(rec.ID) + int64(time))
		z := leaveRNG.NormFloat64(0, 60)
		if float64(time-rec.ArrivalTime-rec.StayTimePreference) > z {
			rec.AddLogLine(fmt.Sprintf("t=%d: leaving after %d minutes in the park", time, time-rec.ArrivalTime))
			return Decision{Action: models.ActionLeaving, Destination: models.LocationGate, DestArea: entranceArea}, nil
		}
	}

	// (b) Redeem a queued pass whose wait has cleared.
	for _, h := range rec.Holdings {
		if h.RemainingDelay <= 0 {
			target, ok := findAttraction(attractions, h.AttractionName)
			if !ok {
				return Decision{}, fmt.Errorf("agent %d holds a pass for unknown attraction %q", rec.ID, h.AttractionName)
			}
			rec.AddLogLine(fmt.Sprintf("t=%d: redeeming held pass for %s", time, h.AttractionName))
			return Decision{Action: models.ActionRedeemingPass, Destination: h.AttractionName, DestArea: target.ParkArea}, nil
		}
	}

	// (c) Attraction-vs-activity choice.
	canGetExp := len(rec.Holdings) < rec.ExpLimit && rec.PassAbility
	u := processRNG.Float64()
	if u <= rec.AttractionPreference || canGetExp {
		decision, ok, err := decideAttraction(rec, time, processRNG, attractions, parkMap)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return decision, nil
		}
	}

	// (h) Activity selection, reached directly or as a fallback.
	return decideActivity(rec, time, processRNG, activities, parkMap)
}

func findAttraction(attractions []*attraction.Attraction, name string) (*attraction.Attraction, bool) {
	for _, a := range attractions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// decideAttraction runs steps (d) through (g). ok is false when the
// candidate set empties out, from either the eligibility filter, the
// utility cutoff, or resampling after rejection — the caller should then
// fall back to activity selection.
func decideAttraction(
	rec *models.AgentRecord,
	time int,
	processRNG *utils.RandSource,
	attractions []*attraction.Attraction,
	parkMap ParkMap,
) (Decision, bool, error) {
	eligible := make([]*attraction.Attraction, 0, len(attractions))
	for _, a := range attractions {
		if _, held := rec.HasPass(a.Name); held {
			continue
		}
		if !rec.AllowRepeats && rec.TimesCompleted[a.Name] > 0 {
			continue
		}
		switch rec.AgeClass {
		case models.AgeClassNoChildRides:
			if a.ChildEligible && !a.AdultEligible {
				continue
			}
		case models.AgeClassNoAdultRides:
			if a.AdultEligible && !a.ChildEligible {
				continue
			}
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return Decision{}, false, nil
	}

	// (e) Utility, dropping non-positive candidates.
	kept := make([]*attraction.Attraction, 0, len(eligible))
	weights := make([]float64, 0, len(eligible))
	for _, a := range eligible {
		dist, err := parkMap.TravelTime(rec.CurrentParkArea, a.ParkArea)
		if err != nil {
			return Decision{}, false, fmt.Errorf("agent %d: %w", rec.ID, err)
		}
		nPast := rec.TimesCompleted[a.Name]
		const nFuture = 0 // candidates never already hold a pass, per the eligibility filter above
		utility := (10*float64(a.Popularity)/(1+float64(nPast)+nFuture))*
			math.Pow(rec.WaitDiscountBeta, float64(a.WaitTime())) - 3*float64(dist)
		if utility <= 0 {
			continue
		}
		kept = append(kept, a)
		weights = append(weights, utility)
	}
	if len(kept) == 0 {
		return Decision{}, false, nil
	}

	// (f) Normalized softmax.
	probs := utils.Softmax(weights)

	// (g) Sample then validate, removing rejected candidates and
	// resampling from the shrinking set.
	remaining, remainingProbs := kept, probs
	for len(remaining) > 0 {
		idx := utils.WeightedIndex(remainingProbs, processRNG.Float64())
		if idx < 0 {
			break
		}
		cand := remaining[idx]
		wait := cand.WaitTime()

		if wait > rec.ExpWaitThreshold && rec.PassAbility && len(rec.Holdings) < rec.ExpLimit &&
			cand.ExpeditedEnabled && cand.GateOpen() {
			rec.AddLogLine(fmt.Sprintf("t=%d: getting a pass for %s", time, cand.Name))
			return Decision{Action: models.ActionGettingPass, Destination: cand.Name, DestArea: cand.ParkArea}, true, nil
		}
		if wait > rec.WaitThreshold+6*cand.Popularity {
			remaining, remainingProbs = dropCandidate(remaining, remainingProbs, idx)
			continue
		}
		if collidesWithHeldPass(rec, wait, cand.RunTime) {
			remaining, remainingProbs = dropCandidate(remaining, remainingProbs, idx)
			continue
		}

		rec.AddLogLine(fmt.Sprintf("t=%d: traveling to %s", time, cand.Name))
		return Decision{Action: models.ActionTraveling, Destination: cand.Name, DestArea: cand.ParkArea}, true, nil
	}

	return Decision{}, false, nil
}

// collidesWithHeldPass reports whether queueing for `wait` minutes plus the
// candidate's run time would make the agent miss any pass it already holds.
func collidesWithHeldPass(rec *models.AgentRecord, wait, runTime int) bool {
	for _, h := range rec.Holdings {
		if h.RemainingDelay < wait+runTime {
			return true
		}
	}
	return false
}

func dropCandidate(candidates []*attraction.Attraction, weights []float64, idx int) ([]*attraction.Attraction, []float64) {
	candidates = append(candidates[:idx:idx], candidates[idx+1:]...)
	weights = append(weights[:idx:idx], weights[idx+1:]...)
	return candidates, weights
}

// decideActivity performs (h): a weighted choice among all activities by
// raw popularity.
func decideActivity(
	rec *models.AgentRecord,
	time int,
	processRNG *utils.RandSource,
	activities []*activity.Activity,
	parkMap ParkMap,
) (Decision, error) {
	if len(activities) == 0 {
		return Decision{}, fmt.Errorf("agent %d: no activities available to fall back to", rec.ID)
	}
	weights := make([]float64, len(activities))
	for i, act := range activities {
		weights[i] = float64(act.Popularity)
	}
	idx := utils.WeightedIndex(weights, processRNG.Float64())
	if idx < 0 {
		idx = 0
	}
	chosen := activities[idx]
	rec.AddLogLine(fmt.Sprintf("t=%d: browsing %s", time, chosen.Name))
	return Decision{Action: models.ActionTraveling, Destination: chosen.Name, DestArea: chosen.ParkArea}, nil
}
