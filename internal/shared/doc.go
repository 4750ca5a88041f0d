// Package shared holds helpers used by more than one layer of bondscope.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and a small on-disk bond dataset for service and transport
// tests:
//
//	func TestOverview(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    ds := testutil.WriteBondDataset(t)
//	    // point the loader at ds.PurchasesPath and ds.RedemptionsPath
//	}
//
// Nothing here may import domain packages under internal/.
package shared
