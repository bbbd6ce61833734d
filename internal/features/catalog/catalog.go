package catalog

import (
	"math/rand"
	"time"

	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/features/catalog/models"
)

// Catalog is the static weighted pool of card definitions.
type Catalog struct {
	cards       []models.CardDefinition
	byID        map[string]*models.CardDefinition
	totalWeight int
}

// New builds a catalog from the given definitions. Cards with a non-positive
// weight never come up in a draw but stay addressable by ID.
func New(cards []models.CardDefinition) *Catalog {
	c := &Catalog{
		cards: cards,
		byID:  make(map[string]*models.CardDefinition, len(cards)),
	}
	for i := range c.cards {
		card := &c.cards[i]
		c.byID[card.ID] = card
		if card.Weight > 0 {
			c.totalWeight += card.Weight
		}
	}
	return c
}

// NewDefault returns the built-in Desk Warrior card pool.
//
// Exercise cards carry weight 12 each (60 total), wellness tips weight 5 each
// (20 total), so tips make up 25% of issuances and exercises split the rest
// evenly across sub-types.
func NewDefault() *Catalog {
	return New([]models.CardDefinition{
		{
			ID:               "ex_push_ups",
			Kind:             models.CardKindExercise,
			Exercise:         models.ExercisePushUps,
			Title:            "Push-ups",
			Body:             "Drop and give me 10 push-ups. Knees down is fine.",
			ExpectedDuration: 20 * time.Second,
			Points:           10,
			Weight:           12,
		},
		{
			ID:               "ex_squats",
			Kind:             models.CardKindExercise,
			Exercise:         models.ExerciseSquats,
			Title:            "Squats",
			Body:             "Stand up and do 15 bodyweight squats.",
			ExpectedDuration: 25 * time.Second,
			Points:           10,
			Weight:           12,
		},
		{
			ID:               "ex_planks",
			Kind:             models.CardKindExercise,
			Exercise:         models.ExercisePlanks,
			Title:            "Plank",
			Body:             "Hold a plank for 60 seconds. Keep your back straight.",
			ExpectedDuration: 60 * time.Second,
			Points:           15,
			Weight:           12,
		},
		{
			ID:               "ex_stretch",
			Kind:             models.CardKindExercise,
			Exercise:         models.ExerciseStretch,
			Title:            "Stretch",
			Body:             "Stand up, reach for the ceiling, then touch your toes. Repeat 5 times.",
			ExpectedDuration: 30 * time.Second,
			Points:           5,
			Weight:           12,
		},
		{
			ID:               "ex_walk",
			Kind:             models.CardKindExercise,
			Exercise:         models.ExerciseWalk,
			Title:            "Walk",
			Body:             "Take a 2-minute walk. Stairs count double (mentally).",
			ExpectedDuration: 120 * time.Second,
			Points:           5,
			Weight:           12,
		},
		{
			ID:     "tip_hydration",
			Kind:   models.CardKindWellnessTip,
			Title:  "Hydration",
			Body:   "Refill your water. Aim for a glass every hour at the desk.",
			Weight: 5,
		},
		{
			ID:     "tip_posture",
			Kind:   models.CardKindWellnessTip,
			Title:  "Posture check",
			Body:   "Shoulders back, feet flat, screen at eye level.",
			Weight: 5,
		},
		{
			ID:     "tip_eye_strain",
			Kind:   models.CardKindWellnessTip,
			Title:  "Eye strain",
			Body:   "20-20-20: every 20 minutes look at something 20 feet away for 20 seconds.",
			Weight: 5,
		},
		{
			ID:     "tip_sedentary",
			Kind:   models.CardKindWellnessTip,
			Title:  "Sitting warning",
			Body:   "You have likely been sitting for a while. Long sitting stretches add up; break them.",
			Weight: 5,
		},
	})
}

// Draw picks a card by weight using the provided random source. Deterministic
// given a seeded source, which is what the tests rely on.
func (c *Catalog) Draw(r *rand.Rand) *models.CardDefinition {
	if c.totalWeight == 0 {
		return nil
	}

	winning := r.Intn(c.totalWeight) + 1
	current := 0
	for i := range c.cards {
		card := &c.cards[i]
		if card.Weight <= 0 {
			continue
		}
		current += card.Weight
		if current >= winning {
			return card
		}
	}
	return nil
}

// ByID resolves a card definition by its ID.
func (c *Catalog) ByID(id string) (*models.CardDefinition, error) {
	card, ok := c.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "card definition not found").
			WithDetail("card_id", id)
	}
	return card, nil
}

// Cards returns all definitions in the pool.
func (c *Catalog) Cards() []models.CardDefinition {
	return c.cards
}

// MaxExpectedDuration returns the longest expected completion duration in the
// pool. The session grace window must exceed it.
func (c *Catalog) MaxExpectedDuration() time.Duration {
	var max time.Duration
	for i := range c.cards {
		if d := c.cards[i].ExpectedDuration; d > max {
			max = d
		}
	}
	return max
}
