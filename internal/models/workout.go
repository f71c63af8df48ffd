package models

import "time"

type Workout struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ExerciseCount   int        `json:"exercise_count"`
	Exercises       []Exercise `json:"exercises,omitempty"`
}

type Exercise struct {
	ID          string `json:"id"`
	WorkoutID   string `json:"workout_id"`
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	RestSeconds int    `json:"rest"`
	Notes       string `json:"notes"`
	Order       int    `json:"exercise_order"`
}

type WorkoutAssignment struct {
	Assignment
	Workout *Workout        `json:"workout,omitempty"`
	Athlete *AthleteSummary `json:"athlete,omitempty"`
}
