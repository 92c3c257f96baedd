package entities

import (
	"fmt"
	"strings"
)

// Persona is the voice the backend is asked to answer in.
type Persona string

const (
	PersonaHistorian      Persona = "historian"
	PersonaFoundingFather Persona = "founding_father"
	PersonaTimeTraveler   Persona = "time_traveler"
)

// DefaultPersona is active when a session starts.
const DefaultPersona = PersonaHistorian

var personaLabels = map[Persona]string{
	PersonaHistorian:      "Expert Historian",
	PersonaFoundingFather: "Benjamin Franklin",
	PersonaTimeTraveler:   "Time-Traveling Guide",
}

// Personas lists every persona in display order.
func Personas() []Persona {
	return []Persona{PersonaHistorian, PersonaFoundingFather, PersonaTimeTraveler}
}

// Label is the stable display label.
func (p Persona) Label() string {
	return personaLabels[p]
}

// Valid reports whether p is one of the fixed personas.
func (p Persona) Valid() bool {
	_, ok := personaLabels[p]
	return ok
}

// ParsePersona accepts a wire identifier, ignoring surrounding space and case.
func ParsePersona(s string) (Persona, error) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown persona %q", s)
	}
	return p, nil
}

// ExampleQuestions are the preset questions offered to new users.
var ExampleQuestions = []string{
	"What were the key arguments for independence in 1776?",
	"What did the founders believe about taxation?",
	"What grievances did colonists have against King George?",
}
