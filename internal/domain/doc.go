// Package domain models weather-radar composite grids and point readings.
//
// # Data Source
//
// Composite files are produced by the national radar network and published on
// an HTTP archive as ODIM-style HDF5 containers, one file per acquisition
// (typically every 10 minutes). Each file carries the rendered reflectivity
// mosaic plus the metadata needed to geolocate and calibrate it:
//
//	/where                →  projdef (PROJ.4 string), UL_lon, UL_lat (WGS-84
//	                         degrees of the upper-left corner), xscale, yscale
//	                         (meters per pixel)
//	/dataset1/what        →  gain, offset, nodata, undetect
//	/how                  →  endepochs (Unix seconds, UTC)
//	/dataset1/data1/data  →  the 2-D array of stored cell codes
//
// # Cell Encoding
//
// Stored cells are small integer codes, not physical values. Two codes are
// reserved sentinels:
//
//	nodata    →  the pixel lies outside radar coverage
//	undetect  →  the pixel was scanned but produced no return signal
//
// Every other code converts linearly to reflectivity:
//
//	dBZ = code*gain + offset
//
// Sentinel comparison is exact. Codes are container integers (8/16/32 bit)
// held here in float64, which represents them without loss, so == against the
// stored sentinel values is reliable.
//
// # Timestamps
//
// The /how endepochs attribute is the single source of truth for a file's
// acquisition time. The textual enddate/endtime attributes duplicate it in
// local file conventions and are retained for diagnostics only; they never
// feed the reported timestamp.
//
// # Reading Categories
//
// Extracting the target point from one file yields exactly one Reading in one
// of four categories: Measured (a calibrated dBZ value), NoData and Undetect
// (sentinel cells), or OutOfGrid (the target resolves to pixel indices outside
// the array, a normal outcome for points beyond the composite's extent rather
// than an error). Only Measured readings can enter a Report.
package domain
