package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Week status constants
const (
	StatusVoting    = "VOTING"
	StatusFinalized = "FINALIZED"
)

// Meal type constants
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// MealTypes lists the valid meal types in serving order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner}

// Roles resolved by the identity provider
const (
	RoleStudent   = "student"
	RoleCaretaker = "caretaker"
	RoleWarden    = "warden"
)

// DaysPerWeek is the length of every planning cycle. Day 0 is Monday.
const DaysPerWeek = 7

// Request types

type CreateWeekRequest struct {
	WeekStartDate string `json:"week_start_date"`
}

// OptionInput is one candidate food for a (day, meal) slot.
type OptionInput struct {
	Day      int    `json:"day" validate:"min=0,max=6"`
	Meal     string `json:"meal" validate:"required,oneof=breakfast lunch dinner"`
	FoodName string `json:"food_name" validate:"required"`
}

func (o *OptionInput) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}

type AddOptionsRequest struct {
	Options []OptionInput `json:"options"`
}

type CastVoteRequest struct {
	MealOptionID string `json:"meal_option_id"`
}

// Response types

// SkippedOption reports a batch entry that was not accepted, by input index.
type SkippedOption struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type AddOptionsResponse struct {
	Options []MealOption    `json:"options"`
	Skipped []SkippedOption `json:"skipped,omitempty"`
}

type CastVoteResponse struct {
	Message string `json:"message"`
}

type MyVotesResponse struct {
	WeekID string `json:"week_id"`
	// "day-mealType" -> meal option ID; absent key means not voted yet
	MyVotes map[string]string `json:"my_votes"`
}

type SlotTally struct {
	FoodName  string `json:"food_name"`
	VoteCount int    `json:"vote_count"`
}

type TallyResponse struct {
	WeekID     string                   `json:"week_id"`
	TotalVotes int                      `json:"total_votes"`
	ByDayMeal  []map[string][]SlotTally `json:"by_day_meal"`
}

type WeekResponse struct {
	Week             Week                      `json:"week"`
	Status           string                    `json:"status"`
	OptionsByDayMeal []map[string][]OptionView `json:"options_by_day_meal"`
	FinalByDayMeal   []map[string]FinalView    `json:"final_by_day_meal"`
}

type FinalResponse struct {
	Week           Week                   `json:"week"`
	Status         string                 `json:"status"`
	FinalByDayMeal []map[string]FinalView `json:"final_by_day_meal"`
}

type FinalizeWeekResponse struct {
	Week    Week         `json:"week"`
	Entries []FinalEntry `json:"entries"`
}

// Domain types

type Week struct {
	ID            string    `json:"id"`
	WeekStartDate time.Time `json:"week_start_date"`
	Status        string    `json:"status"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type MealOption struct {
	ID        string    `json:"id"`
	WeekID    string    `json:"week_id"`
	Day       int       `json:"day"`
	MealType  string    `json:"meal_type"`
	FoodName  string    `json:"food_name"`
	VoteCount int       `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is a student's current choice for a slot, not a history log.
type Vote struct {
	ID           string `json:"id"`
	StudentID    string `json:"-"`
	WeekID       string `json:"week_id"`
	Day          int    `json:"day"`
	MealType     string `json:"meal_type"`
	MealOptionID string `json:"meal_option_id"`
}

// FinalEntry is the winning option for a slot. The food name is copied,
// not referenced, so the entry survives the option ever going away.
type FinalEntry struct {
	WeekID    string `json:"week_id"`
	Day       int    `json:"day"`
	MealType  string `json:"meal_type"`
	FoodName  string `json:"food_name"`
	VoteCount int    `json:"vote_count"`
}

// Projection types for the day/meal grid views

type OptionView struct {
	ID        string `json:"id"`
	FoodName  string `json:"food_name"`
	VoteCount int    `json:"vote_count"`
}

type FinalView struct {
	FoodName  string `json:"food_name"`
	VoteCount int    `json:"vote_count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
