// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"github.com/spf13/cobra"

	"github.com/301st/relay/command/ready"
	"github.com/301st/relay/command/run"
	"github.com/301st/relay/command/version"
	"github.com/301st/relay/utils/cobrautil"
)

const (
	EnvPrefix          = "RELAY"
	ConfigFileFlagName = "config-file"
)

func Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Authenticated HTTP relay with upstream proxy fallback",
		Long: "Relay accepts authenticated requests carrying a target URL " +
			"and fetches it through an ordered list of upstream HTTP proxies, " +
			"falling back to the next proxy until one succeeds.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commandGroups := []*cobra.Command{
		run.Command(),
		ready.Command(),
		version.Command(),
	}
	rootCmd.AddCommand(commandGroups...)

	for _, cmd := range commandGroups {
		if cmd.Flags().HasFlags() {
			bindFlagsToEnv(cmd)
			cobrautil.AppendEnvToUsage(cmd, EnvPrefix)
		}
	}

	return rootCmd
}

func bindFlagsToEnv(cmd *cobra.Command) {
	preRunE := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName); err != nil {
			return err
		}
		if preRunE != nil {
			return preRunE(cmd, args)
		}
		return nil
	}
}
