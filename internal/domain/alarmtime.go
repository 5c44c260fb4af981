package domain

// ParseAlarmTime converts a zero-padded 24-hour "HH:MM" string into minutes
// since midnight. It is strict: exactly five characters, digits and a colon.
func ParseAlarmTime(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidAlarmTime
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidAlarmTime
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, ErrInvalidAlarmTime
	}
	return hour*60 + minute, nil
}
