// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-oauth/callback"
	"github.com/stacklok/toolhive-oauth/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		subject string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize interactively through a loopback redirect and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = a.cfg.Login.Timeout
			}

			out := cmd.OutOrStdout()
			tok, err := c.Login(cmd.Context(), subject, client.LoginOptions{
				Timeout:   timeout,
				Responder: callback.PlainTextResponder,
				Open: func(authURL string) error {
					_, err := fmt.Fprintf(out, "Open this URL in your browser to authorize:\n\n  %s\n\n", authURL)
					return err
				},
			})
			if err != nil {
				return err
			}
			if err := a.store.Save(a.tokenKey, tok); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token stored under %q (expires %s).\n", a.tokenKey, formatExpiry(tok.Expiry))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Value the state parameter is bound to")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the redirect (default from config, else 2m)")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			old, err := a.store.Load(a.tokenKey)
			if err != nil {
				return err
			}
			if !old.HasRefreshToken() {
				return client.ErrNoRefreshToken
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			tok, err := c.Refresh(cmd.Context(), old.RefreshToken)
			if err != nil {
				return err
			}
			if err := a.store.Save(a.tokenKey, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed (expires %s).\n", formatExpiry(tok.Expiry))
			return nil
		},
	}
}

func newAppTokenCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "app-token",
		Short: "Obtain an app access token with the client credentials grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			tok, err := c.AppToken(cmd.Context())
			if err != nil {
				return err
			}
			if save {
				return a.store.Save(a.tokenKey, tok)
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Store the token instead of printing it")
	return cmd
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}
