// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/oia.go
// Summary: Operator Information Area state for a 5250 session.
// Usage: Mutated by the order processor and the transaction manager; read
// by the keyboard-input collaborator, which must reject input while locked.

package screen

import "sync"

// InputInhibit enumerates why input is currently inhibited.
type InputInhibit int

const (
	InhibitNone InputInhibit = iota
	InhibitSystemWait
	InhibitCommCheck
	InhibitProgCheck
	InhibitMachineCheck
)

// String returns a short name for the inhibit reason.
func (i InputInhibit) String() string {
	switch i {
	case InhibitSystemWait:
		return "system-wait"
	case InhibitCommCheck:
		return "comm-check"
	case InhibitProgCheck:
		return "prog-check"
	case InhibitMachineCheck:
		return "machine-check"
	}
	return "not-inhibited"
}

// OIAChange identifies which part of the OIA mutated, for listeners.
type OIAChange int

const (
	OIAChangedKeyboardLock OIAChange = iota
	OIAChangedInputInhibit
)

// OIAListener receives change notifications. Listeners run on the mutating
// goroutine and must not call back into the OIA.
type OIAListener interface {
	OnOIAChanged(o *OIA, change OIAChange)
}

// OIA holds the operator information area of one session. Each session owns
// its own instance; no state is shared across sessions.
type OIA struct {
	mu            sync.Mutex
	locked        bool
	inhibited     InputInhibit
	commCheck     int
	machineCheck  int
	inhibitedText string
	listeners     []OIAListener
}

// NewOIA returns the initial state: keyboard locked until the first host
// screen arrives, input not inhibited.
func NewOIA() *OIA {
	return &OIA{locked: true}
}

// IsKeyboardLocked reports whether the keyboard is locked.
func (o *OIA) IsKeyboardLocked() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.locked
}

// SetKeyboardLocked updates the lock state and notifies listeners on a real
// transition.
func (o *OIA) SetKeyboardLocked(locked bool) {
	o.mu.Lock()
	changed := o.locked != locked
	o.locked = locked
	listeners := o.listeners
	o.mu.Unlock()
	if changed {
		for _, l := range listeners {
			l.OnOIAChanged(o, OIAChangedKeyboardLock)
		}
	}
}

// InputInhibited returns the current inhibit reason.
func (o *OIA) InputInhibited() InputInhibit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inhibited
}

// SetInputInhibited records the inhibit reason. The code and message are
// advisory: any value, including an empty or very long message, is
// accepted.
func (o *OIA) SetInputInhibited(reason InputInhibit, code int, message ...string) {
	o.mu.Lock()
	o.inhibited = reason
	switch reason {
	case InhibitCommCheck:
		o.commCheck = code
	case InhibitMachineCheck:
		o.machineCheck = code
	}
	if len(message) > 0 {
		o.inhibitedText = message[0]
	} else {
		o.inhibitedText = ""
	}
	listeners := o.listeners
	o.mu.Unlock()
	for _, l := range listeners {
		l.OnOIAChanged(o, OIAChangedInputInhibit)
	}
}

// CommCheckCode returns the last communications-check code.
func (o *OIA) CommCheckCode() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.commCheck
}

// MachineCheckCode returns the last machine-check code.
func (o *OIA) MachineCheckCode() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machineCheck
}

// InhibitedText returns the advisory message set with the inhibit reason.
func (o *OIA) InhibitedText() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inhibitedText
}

// AddListener registers a change listener.
func (o *OIA) AddListener(l OIAListener) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (o *OIA) RemoveListener(l OIAListener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, have := range o.listeners {
		if have == l {
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return
		}
	}
}
