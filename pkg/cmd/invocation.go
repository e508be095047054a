// Package cmd is a transport-neutral command core. A command has a name, a
// description and Run; adapters decide how it is registered and invoked.
package cmd

import "context"

// Invocation is what an adapter hands to a command. Data holds the
// adapter's own context, such as a Discord interaction.
type Invocation struct {
	Args []string
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
