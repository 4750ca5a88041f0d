// Package services implements the business logic between the HTTP handlers
// and the analysis core.
//
// AnalysisService owns the loaded dataset. Reload reads and normalizes both
// disclosure tables and swaps them in atomically; every query then runs
// against that immutable snapshot, through the result cache when one is
// configured. Unknown donors are reported as *DonorNotFoundError carrying
// the closest known names.
//
// HealthService answers liveness and readiness probes.
package services
