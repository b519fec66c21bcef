// Package cli provides the loginflow command-line client.
//
// It wires configuration, the session store, the API client and the login
// flow behind cobra commands:
//
//   - login    sign in (interactive form, line prompts, or --password-stdin)
//   - profile  fetch the profile of the stored session
//   - refresh  exchange the refresh token for a new access token
//   - logout   remove the stored tokens
//   - status   show what the session store holds
//   - repl     interactive loop over the commands above
//   - version  print build information
//
// Every command builds a fresh App, runs, and maps the outcome to an exit
// code: ExitOK, ExitFailure for login or profile failures, ExitError for
// usage, configuration, network and storage errors. See Execute.
package cli
