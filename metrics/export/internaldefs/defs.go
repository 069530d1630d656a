package internaldefs

import (
	goRecover "github.com/MrEthical07/goRecover"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   goRecover.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   goRecover.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goRecover.MetricUserCheckRejected, Name: "gorecover_user_check_rejected_total", Help: "Reset requests rejected for a malformed, unknown or federated address."},
	{ID: goRecover.MetricCooldownHit, Name: "gorecover_cooldown_hit_total", Help: "Reset requests refused by the issuance cooldown."},
	{ID: goRecover.MetricResetTokenIssued, Name: "gorecover_reset_token_issued_total", Help: "Reset tokens issued."},
	{ID: goRecover.MetricResetTokenSuperseded, Name: "gorecover_reset_token_superseded_total", Help: "Live reset tokens revoked by a newer issuance."},
	{ID: goRecover.MetricNotifyFailed, Name: "gorecover_notify_failed_total", Help: "Synchronous notice deliveries that failed."},
	{ID: goRecover.MetricRedeemSuccess, Name: "gorecover_redeem_success_total", Help: "Successful password resets."},
	{ID: goRecover.MetricRedeemInvalidToken, Name: "gorecover_redeem_invalid_token_total", Help: "Redemptions with an unknown, expired or malformed token."},
	{ID: goRecover.MetricRedeemPolicyRejected, Name: "gorecover_redeem_policy_rejected_total", Help: "Redemptions rejected by the password policy."},
	{ID: goRecover.MetricRedeemPersistenceFailed, Name: "gorecover_redeem_persistence_failed_total", Help: "Redemptions whose account vanished before commit."},
	{ID: goRecover.MetricTokenInvalidateFailed, Name: "gorecover_token_invalidate_failed_total", Help: "Committed resets whose token could not be deleted."},
}

var HistogramDefs = []HistogramDef{
	{ID: goRecover.MetricRedeemLatency, Name: "gorecover_redeem_latency_seconds", Help: "RedeemResetToken latency histogram."},
}

// HistogramBounds match the engine's fixed bucket upper bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form usable inside metric names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the eight engine buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
