package trial

import (
	"fmt"
	"strconv"
)

// PadWidth is the number of decimal digits in numTrials.
func PadWidth(numTrials int) int {
	return len(strconv.Itoa(numTrials))
}

// Suffix zero-pads index to the width of numTrials, e.g. 3 of 100 is "003".
func Suffix(index, numTrials int) string {
	return fmt.Sprintf("%0*d", PadWidth(numTrials), index)
}
