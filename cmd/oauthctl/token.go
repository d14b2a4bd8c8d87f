// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-oauth/client"
	"github.com/stacklok/toolhive-oauth/scope"
)

type validateOutput struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	Scopes    []string `json:"scopes"`
	ExpiresIn string   `json:"expires_in"`
	Missing   []string `json:"missing_scopes,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [token]",
		Short: "Validate an access token (the stored one by default) and apply the configured policy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, _, err := a.accessToken(args)
			if err != nil {
				return err
			}
			p, err := a.cfg.CompilePolicy()
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			v, err := c.Authorize(cmd.Context(), tok, p)
			if v == nil {
				return err
			}
			out := validateOutput{
				ClientID:  v.ClientID,
				Login:     v.Login,
				UserID:    v.UserID,
				Scopes:    scope.Strings(v.Scopes),
				ExpiresIn: v.ExpiresIn.String(),
				Missing:   scope.Strings(scope.Missing(v.Scopes, c.Config().Scopes)),
			}
			if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
				return perr
			}
			return err
		},
	}
}

func newRevokeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke [token]",
		Short: "Revoke an access token (the stored one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, stored, err := a.accessToken(args)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			err = c.Revoke(cmd.Context(), tok)
			switch {
			case errors.Is(err, client.ErrInvalidToken):
				a.logger.Warn("token was already invalid", "error", err)
			case err != nil:
				return err
			}
			if stored {
				if err := a.store.Delete(a.tokenKey); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token revoked.")
			return nil
		},
	}
}
