package link

// ParseArgs decodes n comma separated signed integers from a command line.
//
// The opcode is at index 0 and the byte at index 1 is a separator slot
// which is always skipped, so scanning starts at index 2. A '-' anywhere
// in a field negates it. A field ends at ',', NUL or end of line and must
// contain at least one digit. Parsing stops as soon as n fields are
// complete; anything after is ignored. Values wrap at 16 bits.
func ParseArgs(line []byte, n int) ([]int, error) {
	args := make([]int, 0, n)
	if n <= 0 {
		return args, nil
	}
	var (
		value  int16
		neg    bool
		digits int
	)
	for i := 2; ; i++ {
		b := byteAt(line, i)
		switch b {
		case 0, ',':
			if digits == 0 {
				return nil, &ParseError{Line: line, Pos: i}
			}
			if neg {
				value = -value
			}
			args = append(args, int(value))
			value, neg, digits = 0, false, 0
		case '-':
			neg = true
		default:
			if b < '0' || b > '9' {
				return nil, &ParseError{Line: line, Pos: i}
			}
			value = value*10 + int16(b-'0')
			digits++
		}
		if len(args) == n {
			return args, nil
		}
		if b == 0 {
			return nil, &ParseError{Line: line, Pos: i}
		}
	}
}

func byteAt(line []byte, i int) byte {
	if i < len(line) {
		return line[i]
	}
	return 0
}

// Parse decodes a line into a Command with the arity of its opcode.
// Unknown opcodes yield a Command without args and ErrUnknownOpcode.
func Parse(line []byte) (*Command, error) {
	cmd := &Command{Opcode: byteAt(line, 0)}
	arity, ok := Arity(cmd.Opcode)
	if !ok {
		return cmd, ErrUnknownOpcode
	}
	args, err := ParseArgs(line, arity)
	if err != nil {
		return cmd, err
	}
	cmd.Args = args
	return cmd, nil
}
