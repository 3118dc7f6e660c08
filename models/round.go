package models

import "fmt"

// Round represents the stages of the cup, matching the ENUM stored in the DB.
type Round string

const (
	RoundOf16    Round = "round_of_16"
	QuarterFinal Round = "quarter_final"
	SemiFinal    Round = "semi_final"
	Final        Round = "final"
)

// Rounds lists the stages in play order.
var Rounds = []Round{RoundOf16, QuarterFinal, SemiFinal, Final}

// MatchCount returns how many matches the round holds when fully seeded.
func (r Round) MatchCount() int {
	switch r {
	case RoundOf16:
		return 8
	case QuarterFinal:
		return 4
	case SemiFinal:
		return 2
	case Final:
		return 1
	}
	return 0
}

// Next returns the round this round's winners feed. ok is false for the Final.
func (r Round) Next() (Round, bool) {
	switch r {
	case RoundOf16:
		return QuarterFinal, true
	case QuarterFinal:
		return SemiFinal, true
	case SemiFinal:
		return Final, true
	}
	return "", false
}

// Previous returns the feeder round. ok is false for the Round of 16.
func (r Round) Previous() (Round, bool) {
	switch r {
	case QuarterFinal:
		return RoundOf16, true
	case SemiFinal:
		return QuarterFinal, true
	case Final:
		return SemiFinal, true
	}
	return "", false
}

func (r Round) Valid() bool {
	switch r {
	case RoundOf16, QuarterFinal, SemiFinal, Final:
		return true
	}
	return false
}

func ParseRound(s string) (Round, error) {
	r := Round(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown round %q", s)
	}
	return r, nil
}
