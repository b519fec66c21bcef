// Package services contains application services for the loginflow client.
//
// LoginFlow drives the sequence
//
//	Idle -> Submitting -> LoginFailed
//	                   -> LoginSucceeded -> FetchingProfile -> ProfileFetched
//	                                                        -> ProfileFetchFailed
//
// and reports progress through a StatusReporter. Tokens are read and written
// only through an injected session.Store.
package services
