package generic

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	ErrInvalidObject = errors.New("invalid PDF object")
	ErrInvalidString = errors.New("invalid PDF string")
	ErrInvalidName   = errors.New("invalid PDF name")
	ErrInvalidNumber = errors.New("invalid PDF number")
)

// Parser reads PDF objects out of an in-memory byte slice. Random
// access is required for xref-driven parsing, so there is no streaming
// mode.
type Parser struct {
	data []byte
	pos  int

	// ResolveLength, when set, resolves an indirect /Length entry of a
	// stream to its integer value.
	ResolveLength func(ref Reference) (int64, bool)
}

// NewParserFromBytes creates a parser over data, positioned at offset 0.
func NewParserFromBytes(data []byte) *Parser {
	return &Parser{data: data}
}

// Seek repositions the parser at an absolute offset.
func (p *Parser) Seek(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(p.data) {
		offset = len(p.data)
	}
	p.pos = offset
}

// Pos returns the current offset.
func (p *Parser) Pos() int { return p.pos }

func (p *Parser) readByte() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, io.EOF
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

func (p *Parser) unreadByte() {
	if p.pos > 0 {
		p.pos--
	}
}

func (p *Parser) peekByte() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, io.EOF
	}
	return p.data[p.pos], nil
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\x00', '\x0c':
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipWhitespace consumes whitespace and % comments.
func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) {
			p.pos++
			continue
		}
		if b == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

// readToken reads a run of regular characters.
func (p *Parser) readToken() string {
	p.skipWhitespace()
	start := p.pos
	for p.pos < len(p.data) && !isWhitespace(p.data[p.pos]) && !isDelimiter(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// ReadToken skips whitespace and returns the next keyword-style token.
// Xref tables are token soup rather than objects, so the reader drives
// this directly.
func (p *Parser) ReadToken() string {
	return p.readToken()
}

// ParseObject parses the next direct object.
func (p *Parser) ParseObject() (PdfObject, error) {
	p.skipWhitespace()
	b, err := p.peekByte()
	if err != nil {
		return nil, err
	}

	switch {
	case b == '(':
		return p.parseLiteralString()
	case b == '<':
		return p.parseHexOrDict()
	case b == '[':
		return p.parseArray()
	case b == '/':
		return p.parseName()
	case b == 't' || b == 'f':
		return p.parseKeyword()
	case b == 'n':
		return p.parseKeyword()
	case b == '-' || b == '+' || b == '.' || (b >= '0' && b <= '9'):
		return p.parseNumber()
	default:
		return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrInvalidObject, b, p.pos)
	}
}

// ParseObjectOrReference parses the next object, recognizing
// "N G R" indirect references.
func (p *Parser) ParseObjectOrReference() (PdfObject, error) {
	p.skipWhitespace()
	b, err := p.peekByte()
	if err != nil {
		return nil, err
	}
	if b < '0' || b > '9' {
		return p.ParseObject()
	}

	// Could be a bare number or the start of a reference. Parse
	// speculatively and rewind when the R keyword never shows up.
	start := p.pos
	first, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	objNum, ok := first.(IntegerObject)
	if !ok {
		return first, nil
	}

	afterFirst := p.pos
	p.skipWhitespace()
	b, err = p.peekByte()
	if err != nil || b < '0' || b > '9' {
		p.Seek(afterFirst)
		return first, nil
	}
	second, err := p.parseNumber()
	if err != nil {
		p.Seek(afterFirst)
		return first, nil
	}
	genNum, ok := second.(IntegerObject)
	if !ok {
		p.Seek(afterFirst)
		return first, nil
	}

	p.skipWhitespace()
	b, err = p.peekByte()
	if err == nil && b == 'R' {
		p.pos++
		return Reference{ObjectNumber: int(objNum), GenerationNumber: int(genNum)}, nil
	}

	p.Seek(start)
	obj, _ := p.parseNumber()
	return obj, nil
}

func (p *Parser) parseLiteralString() (*StringObject, error) {
	if b, _ := p.readByte(); b != '(' {
		return nil, ErrInvalidString
	}
	var out []byte
	depth := 1
	for depth > 0 {
		b, err := p.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated literal", ErrInvalidString)
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth > 0 {
				out = append(out, b)
			}
		case '\\':
			esc, err := p.readByte()
			if err != nil {
				return nil, fmt.Errorf("%w: unterminated escape", ErrInvalidString)
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, esc)
			case '\r':
				// line continuation, swallow an optional \n
				if b, err := p.peekByte(); err == nil && b == '\n' {
					p.pos++
				}
			case '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					oct := []byte{esc}
					for len(oct) < 3 {
						b, err := p.peekByte()
						if err != nil || b < '0' || b > '7' {
							break
						}
						p.pos++
						oct = append(oct, b)
					}
					v, _ := strconv.ParseUint(string(oct), 8, 16)
					out = append(out, byte(v))
				} else {
					out = append(out, esc)
				}
			}
		default:
			out = append(out, b)
		}
	}
	return &StringObject{Value: out}, nil
}

func (p *Parser) parseHexOrDict() (PdfObject, error) {
	if b, _ := p.readByte(); b != '<' {
		return nil, ErrInvalidObject
	}
	b, err := p.peekByte()
	if err != nil {
		return nil, err
	}
	if b == '<' {
		p.pos++
		return p.parseDictionary()
	}
	return p.parseHexString()
}

func (p *Parser) parseHexString() (*StringObject, error) {
	var digits []byte
	for {
		b, err := p.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated hex string", ErrInvalidString)
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		digits = append(digits, b)
	}
	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	data, err := hex.DecodeString(string(digits))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidString, err)
	}
	return &StringObject{Value: data, IsHex: true}, nil
}

func (p *Parser) parseDictionary() (*DictionaryObject, error) {
	dict := NewDictionary()
	for {
		p.skipWhitespace()
		b, err := p.peekByte()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated dictionary", ErrInvalidObject)
		}
		if b == '>' {
			p.pos++
			if b, _ := p.readByte(); b != '>' {
				return nil, fmt.Errorf("%w: expected '>>'", ErrInvalidObject)
			}
			return dict, nil
		}
		key, err := p.parseName()
		if err != nil {
			return nil, fmt.Errorf("dictionary key: %w", err)
		}
		value, err := p.ParseObjectOrReference()
		if err != nil {
			return nil, fmt.Errorf("dictionary value for /%s: %w", key, err)
		}
		dict.Set(string(key), value)
	}
}

func (p *Parser) parseArray() (ArrayObject, error) {
	if b, _ := p.readByte(); b != '[' {
		return nil, ErrInvalidObject
	}
	arr := ArrayObject{}
	for {
		p.skipWhitespace()
		b, err := p.peekByte()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated array", ErrInvalidObject)
		}
		if b == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.ParseObjectOrReference()
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseName() (NameObject, error) {
	if b, _ := p.readByte(); b != '/' {
		return "", ErrInvalidName
	}
	var out []byte
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		p.pos++
		if b == '#' && p.pos+1 < len(p.data) {
			v, err := strconv.ParseUint(string(p.data[p.pos:p.pos+2]), 16, 16)
			if err != nil {
				return "", fmt.Errorf("%w: bad hex escape", ErrInvalidName)
			}
			p.pos += 2
			out = append(out, byte(v))
			continue
		}
		out = append(out, b)
	}
	return NameObject(out), nil
}

func (p *Parser) parseKeyword() (PdfObject, error) {
	switch tok := p.readToken(); tok {
	case "true":
		return BooleanObject(true), nil
	case "false":
		return BooleanObject(false), nil
	case "null":
		return NullObject{}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected keyword %q", ErrInvalidObject, tok)
	}
}

func (p *Parser) parseNumber() (PdfObject, error) {
	start := p.pos
	real := false
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b == '.' {
			if real {
				break
			}
			real = true
		} else if b == '-' || b == '+' {
			if p.pos != start {
				break
			}
		} else if b < '0' || b > '9' {
			break
		}
		p.pos++
	}
	s := string(p.data[start:p.pos])
	switch s {
	case "", "-", "+", ".":
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if real {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		return RealObject(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	return IntegerObject(v), nil
}

// ParseIndirectObject parses a full "N G obj ... endobj" definition,
// including any stream payload.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	p.skipWhitespace()
	numObj, err := p.parseNumber()
	if err != nil {
		return nil, fmt.Errorf("object number: %w", err)
	}
	objNum, ok := numObj.(IntegerObject)
	if !ok {
		return nil, fmt.Errorf("%w: object number is not an integer", ErrInvalidObject)
	}

	p.skipWhitespace()
	genObj, err := p.parseNumber()
	if err != nil {
		return nil, fmt.Errorf("generation number: %w", err)
	}
	genNum, ok := genObj.(IntegerObject)
	if !ok {
		return nil, fmt.Errorf("%w: generation number is not an integer", ErrInvalidObject)
	}

	if tok := p.readToken(); tok != "obj" {
		return nil, fmt.Errorf("%w: expected 'obj', got %q", ErrInvalidObject, tok)
	}

	obj, err := p.ParseObjectOrReference()
	if err != nil {
		return nil, err
	}

	if dict, ok := obj.(*DictionaryObject); ok {
		save := p.pos
		if tok := p.readToken(); tok == "stream" {
			if b, _ := p.peekByte(); b == '\r' {
				p.pos++
			}
			if b, _ := p.peekByte(); b == '\n' {
				p.pos++
			}
			length, err := p.streamLength(dict)
			if err != nil {
				return nil, err
			}
			if p.pos+int(length) > len(p.data) {
				return nil, fmt.Errorf("%w: stream runs past end of file", ErrInvalidObject)
			}
			data := make([]byte, length)
			copy(data, p.data[p.pos:p.pos+int(length)])
			p.pos += int(length)
			p.readToken() // endstream
			obj = NewStream(dict, data)
		} else {
			p.Seek(save)
		}
	}

	save := p.pos
	if tok := p.readToken(); tok != "endobj" {
		// tolerated: some producers omit endobj
		p.Seek(save)
	}
	return NewIndirectObject(int(objNum), int(genNum), obj), nil
}

func (p *Parser) streamLength(dict *DictionaryObject) (int64, error) {
	switch v := dict.Get("Length").(type) {
	case IntegerObject:
		return int64(v), nil
	case Reference:
		if p.ResolveLength != nil {
			if n, ok := p.ResolveLength(v); ok {
				return n, nil
			}
		}
		return 0, fmt.Errorf("%w: unresolved stream /Length %s", ErrInvalidObject, v)
	default:
		return 0, fmt.Errorf("%w: stream missing /Length", ErrInvalidObject)
	}
}

// ParseRectangle coerces an object into a rectangle.
func ParseRectangle(obj PdfObject) (*Rectangle, error) {
	arr, ok := obj.(ArrayObject)
	if !ok {
		return nil, fmt.Errorf("expected array for rectangle")
	}
	return NewRectangle(arr)
}
