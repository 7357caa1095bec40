// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// Kind names a command.
type Kind string

const (
	KindBeginSession   Kind = transport.CommandBeginSession
	KindEndSession     Kind = transport.CommandEndSession
	KindEcho           Kind = transport.CommandEcho
	KindDiscardSession Kind = transport.CommandDiscardSession
)

var (
	// ErrUnknownCommand is returned by Decode for kinds with no
	// definition.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedPayload is returned by Decode when the payload does
	// not decode into the command's arguments.
	ErrMalformedPayload = errors.New("malformed command payload")
)

// Command is a decoded command ready for execution. The zero Command
// is not executable; build commands with Decode.
type Command struct {
	kind Kind
	args any
}

// Kind returns the command's kind.
func (c Command) Kind() Kind { return c.kind }

// definition holds the two halves of a command: turning a payload into
// arguments, and applying the arguments to daemon state.
type definition struct {
	decode  func(payload []byte) (any, error)
	execute func(state *State, args any) transport.Status
}

// commands maps kinds to definitions. Kinds not in this map are
// rejected by Decode.
var commands = map[Kind]definition{
	KindBeginSession:   define(executeBeginSession),
	KindEndSession:     define(executeEndSession),
	KindEcho:           define(executeEcho),
	KindDiscardSession: define(executeDiscardSession),
}

// define builds a definition whose arguments are the CBOR payload
// decoded into A. An empty payload decodes to the zero A.
func define[A any](execute func(state *State, args A) transport.Status) definition {
	return definition{
		decode: func(payload []byte) (any, error) {
			var args A
			if len(payload) == 0 {
				return args, nil
			}
			if err := codec.Unmarshal(payload, &args); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
			return args, nil
		},
		execute: func(state *State, args any) transport.Status {
			return execute(state, args.(A))
		},
	}
}

// Decode builds a command from its kind and CBOR payload.
func Decode(kind Kind, payload []byte) (Command, error) {
	definition, known := commands[kind]
	if !known {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, kind)
	}
	args, err := definition.decode(payload)
	if err != nil {
		return Command{}, fmt.Errorf("decoding %s: %w", kind, err)
	}
	return Command{kind: kind, args: args}, nil
}

// ExecuteOn applies the command to state and returns its status.
func (c Command) ExecuteOn(state *State) transport.Status {
	definition, known := commands[c.kind]
	if !known {
		return transport.Status{
			Code:    transport.StatusInvalidArgument,
			Message: "command was not built by Decode",
		}
	}
	return definition.execute(state, c.args)
}

// Kinds returns every known command kind, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(commands))
	for kind := range commands {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
