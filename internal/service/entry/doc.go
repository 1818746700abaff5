// Package entry implements the entry and referral ledger.
//
// The service owns the rules for admitting a participant into a campaign,
// linking them to a referrer, awarding points, and recording bonus-action
// completions. Aggregate statistics over the resulting entry collection
// live in internal/analytics.
//
// Repository implementations live in repository/postgres/.
package entry
