package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeyBindingManager(t *testing.T) {
	km := NewKeyBindingManager()

	// Test single key binding
	handledSpace := false
	km.RegisterKeyBinding(
		KeyAction{
			name:    "toggle",
			handler: func() { handledSpace = true },
		},
		[]tcell.Key{},
		[]rune{' '},
	)

	if !km.HandleKey(runeKey(' ')) {
		t.Errorf("Expected space key to be handled")
	}
	if !handledSpace {
		t.Errorf("Expected handler to be called")
	}

	// Test 'gg' sequence
	firstCalled := false
	km.RegisterSequence(
		KeyAction{
			name:    "first",
			handler: func() { firstCalled = true },
		},
		"gg",
	)

	// First 'g' should be pending
	if !km.HandleKey(runeKey('g')) {
		t.Errorf("Expected first 'g' to be consumed")
	}
	if firstCalled {
		t.Errorf("Handler should not be called yet")
	}

	// Second 'g' completes the sequence
	if !km.HandleKey(runeKey('g')) {
		t.Errorf("Expected second 'g' (gg sequence) to be handled")
	}
	if !firstCalled {
		t.Errorf("Expected handler to be called for 'gg'")
	}
}

func TestKeyBindingManagerSpecialKeys(t *testing.T) {
	km := NewKeyBindingManager()

	nextCalled := 0
	km.RegisterKeyBinding(
		KeyAction{
			name:    "next",
			handler: func() { nextCalled++ },
		},
		[]tcell.Key{tcell.KeyRight},
		[]rune{'n'},
	)

	km.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	km.HandleKey(runeKey('n'))
	if nextCalled != 2 {
		t.Errorf("Expected next to be called twice, got %d", nextCalled)
	}

	if km.HandleKey(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)) {
		t.Errorf("Unbound key should not be consumed")
	}
	if km.HandleKey(runeKey('z')) {
		t.Errorf("Unbound rune should not be consumed")
	}
}

func TestKeyBindingManagerReset(t *testing.T) {
	km := NewKeyBindingManager()

	firstCalled := false
	km.RegisterSequence(
		KeyAction{
			name:    "first",
			handler: func() { firstCalled = true },
		},
		"gg",
	)

	// Press 'g'
	km.HandleKey(runeKey('g'))

	// Press non-'g' key - should reset pending
	handleOtherCalled := false
	km.RegisterKeyBinding(
		KeyAction{
			name:    "other",
			handler: func() { handleOtherCalled = true },
		},
		[]tcell.Key{},
		[]rune{'h'},
	)

	if !km.HandleKey(runeKey('h')) {
		t.Errorf("Expected 'h' to be handled")
	}
	if !handleOtherCalled {
		t.Errorf("Expected 'h' handler to be called")
	}

	// a lone 'g' after the reset must not complete the sequence
	km.HandleKey(runeKey('g'))
	km.ResetPending()
	km.HandleKey(runeKey('g'))
	if firstCalled {
		t.Errorf("first should not have been called")
	}
}
