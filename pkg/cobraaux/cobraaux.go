package cobraaux

import (
	"github.com/spf13/cobra"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// RegisterCommand is like parent.AddCommand(child), but also chains
// PersistentPreRunE and PersistentPreRun so the parent's setup always runs
// before the child's.
func RegisterCommand(parent, child *cobra.Command) {
	parentPreRun := parent.PersistentPreRunE
	childPreRun := child.PersistentPreRunE
	if childPreRun == nil && child.PersistentPreRun != nil {
		childPreRun = func(cmd *cobra.Command, args []string) error {
			child.PersistentPreRun(cmd, args)
			return nil
		}
	}
	switch {
	case childPreRun != nil:
		child.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			if parentPreRun != nil {
				if err := parentPreRun(cmd, args); err != nil {
					return xerrors.Errorf("cannot process parent PersistentPreRunE: %w", err)
				}
			}
			return childPreRun(cmd, args)
		}
	case parentPreRun != nil:
		child.PersistentPreRunE = parentPreRun
	}
	parent.AddCommand(child)
}
