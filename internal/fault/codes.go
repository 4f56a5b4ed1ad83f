package fault

import "fmt"

// Codes is the bridge vendor's fault-code table.
var Codes = map[int]string{
	1:   "method not supported",
	2:   "duplicate conference name",
	3:   "duplicate participant name",
	4:   "no such conference or auto attendant",
	5:   "no such participant",
	6:   "too many conferences",
	7:   "too many participants",
	8:   "no conference name or auto attendant id supplied",
	9:   "no participant name supplied",
	10:  "no participant address supplied",
	11:  "invalid start time specified",
	12:  "invalid end time specified",
	13:  "invalid PIN specified",
	14:  "authorization failed",
	15:  "insufficient privileges",
	16:  "invalid enumerateID value",
	17:  "port reservation failure",
	18:  "duplicate numeric ID",
	19:  "unsupported protocol",
	20:  "unsupported participant type",
	21:  "no conference alias supplied",
	22:  "conference.modify 'locked' param unsupported",
	25:  "new port limit lower than currently active",
	26:  "floor control not enabled for this conference",
	27:  "no such template",
	30:  "unsupported bit rate",
	31:  "template name in use",
	32:  "too many templates",
	36:  "required value missing",
	42:  "port conflict",
	43:  "route already exists",
	44:  "route rejected",
	45:  "too many routes",
	46:  "no such route",
	48:  "IP address overflows prefix length",
	49:  "operation would disable active interface",
	101: "missing parameter",
	102: "invalid parameter",
	103: "malformed parameter",
	104: "mismatched parameters",
	201: "operation failed",
}

// Describe returns the vendor description of a fault code.
func Describe(code int) string {
	if d, ok := Codes[code]; ok {
		return d
	}
	return fmt.Sprintf("unknown fault code %d", code)
}
