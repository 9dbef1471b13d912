// Package geomag computes magnetic declination and related field elements
// from tabulated spherical-harmonic geomagnetic models (WMM, IGRF and their
// definitive predecessors).
//
// # Coefficient Files
//
// A coefficient file is fixed-width text, one 80-column record per line. Each
// line, including its terminator, is 81 bytes (LF) or 82 bytes (CR LF); any
// other length means the file is corrupt and nothing is computed.
//
// A record whose first three columns are blank starts a model:
//
//	   WMM-2005  2005.00 12 12  0 2005.00 2010.00  -10.0  600.0   WMM-2005   0
//
// Fields are name, epoch, main-field max degree, secular-variation max degree,
// a reserved degree, first and last valid year, and minimum and maximum valid
// altitude in km. Coefficient records follow in canonical (n, m) order:
//
//	 1  0  -29556.8       0.0        8.0        0.0          WMM-2005   1
//
// Fields are degree n, order m, g, h, and a second g/h pair which holds the
// secular variation (nT/yr) for models that carry one. A tag and line number
// close the record.
//
// # Time Selection
//
// The first model whose last valid year lies after the target date is used
// (the last model when none does). A model with secular-variation terms is
// extrapolated linearly from its epoch; a model without is interpolated
// towards the next model in the file. Every computation is repeated one year
// later to derive annual rates of change.
//
// # Indeterminate Results
//
// Near the geographic poles, close to the magnetic poles and where the field
// is too weak to define a direction, some elements cannot be determined. They
// are reported as [Indeterminate] rather than NaN or zero, and callers must
// check [Value.Float] before formatting an angle.
//
// # Sign Convention
//
// [Report.Declination] is the usual east-positive angle from true north to
// magnetic north. [Declination] and [Report.Correction] return it negated:
// the correction added to a magnetic bearing gives the true bearing.
package geomag
