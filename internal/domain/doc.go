// Package domain models dairy-cattle thermal comfort assessment based on the
// temperature-humidity index (THI).
//
// # Index
//
// The THI combines daily mean air temperature Ta (°C) and relative humidity
// RH (%) into a dimensionless heat-stress score:
//
//	THI = 0.8×Ta + RH×(Ta−14.3)/100 + 46.3
//
// The formula is linear in Ta for fixed RH, and increasing in RH whenever
// Ta exceeds 14.3 °C.
//
// # Risk bands
//
// THI values classify into four bands used for dairy cows. Boundaries are
// inclusive on the lower band:
//
//	THI ≤ 70       normal
//	70 < THI ≤ 78  alert
//	78 < THI ≤ 82  danger
//	THI > 82       emergency
//
// Each band carries a fixed color and advisory text in a single table, so
// the on-screen chart, the PDF report, and published events always agree.
// The mean THI of a period classifies with the same thresholds as a single
// day; there is no separate period-level scheme.
//
// # Data source
//
// Daily records come from the NASA POWER temporal API (parameters T2M and
// RH2M, community AG). POWER publishes daily data with a lag of roughly
// four days and uses -999 as its fill value for missing readings; the
// retrieval adapter drops fill values and unparseable entries before this
// package sees them. [LatestAvailableDate] exposes the lag cutoff so
// callers can reject period ends the source cannot serve yet.
//
// # Aggregation
//
// Chart points bucket by a granularity chosen from the period length in
// days, first match wins: ≤15 daily, ≤90 consecutive 5-day windows
// anchored at the period start, <365 calendar months, otherwise a 12-month
// climatology that merges the same calendar month across all years. Bucket
// values are the mean THI of the records inside; buckets with no records
// emit no point rather than a zero, since a zero would misread missing
// data as no stress. See [SelectGranularity] and [Aggregate].
package domain
