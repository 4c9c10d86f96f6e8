// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import "testing"

func TestSetAndGetPersonality(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityMinimal})

	got := GetPersonality()
	if got.Level != PersonalityMinimal {
		t.Errorf("Level = %q, want %q", got.Level, PersonalityMinimal)
	}
}

func TestSetPersonalityLevel(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level = %q, want %q", got, PersonalityMachine)
	}
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input string
		want  PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"bogus", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		if got := ParsePersonalityLevel(tt.input); got != tt.want {
			t.Errorf("ParsePersonalityLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInitPersonality_EnvOverride(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("METAPATH_PERSONALITY", "minimal")

	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level after env init = %q, want %q", got, PersonalityMinimal)
	}
}

func TestInitPersonality_NonTerminal(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("METAPATH_PERSONALITY", "")

	InitPersonality()

	// Test binaries run with stdout piped, so machine mode is expected here.
	if isTerminal() {
		t.Skip("stdout is a terminal")
	}
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level with piped stdout = %q, want %q", got, PersonalityMachine)
	}
}

func TestShouldShowProgress(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowProgress() {
		t.Error("expected no progress in machine mode")
	}

	SetPersonalityLevel(PersonalityFull)
	if !ShouldShowProgress() {
		t.Error("expected progress in full mode")
	}
}

func TestShouldShowColors(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowColors() {
		t.Error("expected no colors in machine mode")
	}

	SetPersonalityLevel(PersonalityMinimal)
	if !ShouldShowColors() {
		t.Error("expected colors in minimal mode")
	}
}

func TestIsInteractive_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	if IsInteractive() {
		t.Error("machine mode must never be interactive")
	}
}

func TestDefaultPersonality(t *testing.T) {
	p := DefaultPersonality()
	if p.Level != PersonalityFull {
		t.Errorf("default Level = %q, want %q", p.Level, PersonalityFull)
	}
}
