package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// Table identifies a metadata table; it is the top byte of a token.
type Table uint8

const (
	TableTypeRef          Table = 0x01
	TableTypeDef          Table = 0x02
	TableField            Table = 0x04
	TableMethod           Table = 0x06
	TableMemberRef        Table = 0x0A
	TableEvent            Table = 0x14
	TableProperty         Table = 0x17
	TableManifestResource Table = 0x28
)

var tableNames = map[Table]string{
	TableTypeRef:          "TypeRef",
	TableTypeDef:          "TypeDef",
	TableField:            "Field",
	TableMethod:           "Method",
	TableMemberRef:        "MemberRef",
	TableEvent:            "Event",
	TableProperty:         "Property",
	TableManifestResource: "ManifestResource",
}

func (t Table) String() string {
	if name, ok := tableNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Table(0x%02X)", uint8(t))
}

// Token is a metadata token: table in the top byte, 1-based row id below.
type Token uint32

// NewToken builds a token from a table and row id.
func NewToken(t Table, rid uint32) Token {
	return Token(uint32(t)<<24 | rid&0x00FFFFFF)
}

func (t Token) Table() Table { return Table(t >> 24) }
func (t Token) RID() uint32  { return uint32(t) & 0x00FFFFFF }

func (t Token) String() string {
	return fmt.Sprintf("0x%08X", uint32(t))
}

// ParseToken accepts "0x06000001", "06000001" or a decimal value.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	} else if len(s) == 8 {
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid token %q: %w", s, err)
	}
	return Token(v), nil
}
