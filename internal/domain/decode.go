package domain

// Decode classifies a raw cell code against the file's calibration and, for
// measured cells, converts it to reflectivity.
//
// Sentinel checks are exact comparisons and run before conversion: a raw code
// equal to the nodata code is CategoryNoData even if it also equals the
// undetect code, and a code equal to the undetect code is CategoryUndetect.
// Anything else is CategoryMeasured with value raw*gain + offset.
func Decode(raw float64, cal Calibration) (Category, float64) {
	switch raw {
	case cal.NoData:
		return CategoryNoData, 0
	case cal.Undetect:
		return CategoryUndetect, 0
	}
	return CategoryMeasured, raw*cal.Gain + cal.Offset
}
