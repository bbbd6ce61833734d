package models

import "time"

// CardKind separates completable exercise prompts from informational tips.
type CardKind string

const (
	CardKindExercise    CardKind = "exercise"
	CardKindWellnessTip CardKind = "wellness_tip"
)

// ExerciseType is the exercise sub-type of an exercise card.
type ExerciseType string

const (
	ExercisePushUps ExerciseType = "push_ups"
	ExerciseSquats  ExerciseType = "squats"
	ExercisePlanks  ExerciseType = "planks"
	ExerciseStretch ExerciseType = "stretch"
	ExerciseWalk    ExerciseType = "walk"
)

// CardDefinition is an immutable catalog entry.
//
// ExpectedDuration is the minimum plausible completion time for an exercise
// card; wellness tips carry no duration and no points, they are informational
// only and cannot be acknowledged for credit.
type CardDefinition struct {
	ID               string        `json:"id"`
	Kind             CardKind      `json:"kind"`
	Exercise         ExerciseType  `json:"exercise,omitempty"`
	Title            string        `json:"title"`
	Body             string        `json:"body"`
	ExpectedDuration time.Duration `json:"expected_duration,omitempty"`
	Points           int           `json:"points,omitempty"`
	Weight           int           `json:"weight"`
}

// Completable reports whether the card can earn points.
func (c *CardDefinition) Completable() bool {
	return c.Kind == CardKindExercise
}
