// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-oauth/csrf"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Diagnostic helpers for state values",
	}
	cmd.AddCommand(newStateNewCmd(), newStateInspectCmd(a))
	return cmd
}

func newStateNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [subject]",
		Short: "Mint a state value with a throwaway key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := csrf.NewSecretKey()
			if err != nil {
				return err
			}
			var subject string
			if len(args) > 0 {
				subject = args[0]
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), csrf.Generate(key, subject))
			return err
		},
	}
}

type inspectOutput struct {
	Issued  time.Time `json:"issued"`
	Age     string    `json:"age"`
	MaxAge  string    `json:"max_age"`
	Expired bool      `json:"expired"`
}

func newStateInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <state>",
		Short: "Show when a state value was issued; the signature is not checked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issued, ok := csrf.ExtractTime(args[0])
			if !ok {
				return errors.New("malformed state value")
			}
			maxAge := a.cfg.CSRF.MaxAge
			if maxAge <= 0 {
				maxAge = csrf.DefaultMaxAge
			}
			now := time.Now()
			age, _ := csrf.TokenAge(args[0], now)
			expired, _ := csrf.IsExpired(args[0], maxAge, now)

			return printJSON(cmd.OutOrStdout(), inspectOutput{
				Issued:  issued.UTC(),
				Age:     age.Round(time.Second).String(),
				MaxAge:  maxAge.String(),
				Expired: expired,
			})
		},
	}
}
