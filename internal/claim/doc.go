// Package claim holds the claim aggregate for claimgate's FNOL pipeline.
// It defines the Claim entity and its lifecycle state machine, the
// PolicySnapshot and Document entities, the Service for submission and
// document intake, the Store interfaces (persistence), and the error
// kinds shared by the downstream extraction, verification, risk, and
// triage packages.
package claim
