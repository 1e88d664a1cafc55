package util

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func DerefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
