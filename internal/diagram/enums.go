package diagram

// ColumnType is the fixed set of column types the editor offers.
type ColumnType string

const (
	ColumnUUID      ColumnType = "uuid"
	ColumnVarchar   ColumnType = "varchar"
	ColumnInt       ColumnType = "int"
	ColumnBoolean   ColumnType = "boolean"
	ColumnTimestamp ColumnType = "timestamp"
	ColumnText      ColumnType = "text"
	ColumnJSON      ColumnType = "json"
)

// ColumnTypes lists every ColumnType in display order.
var ColumnTypes = []ColumnType{
	ColumnUUID, ColumnVarchar, ColumnInt, ColumnBoolean, ColumnTimestamp, ColumnText, ColumnJSON,
}

func (t ColumnType) Valid() bool {
	for _, c := range ColumnTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Color is a header theme token. The empty Color renders as ColorDefault.
type Color string

const (
	ColorDefault Color = "bg-zinc-900"
	ColorBlue    Color = "bg-blue-600"
	ColorEmerald Color = "bg-emerald-600"
	ColorRed     Color = "bg-red-600"
	ColorAmber   Color = "bg-amber-600"
	ColorPurple  Color = "bg-purple-600"
	ColorPink    Color = "bg-pink-600"
	ColorIndigo  Color = "bg-indigo-600"
	ColorCyan    Color = "bg-cyan-600"
	ColorTeal    Color = "bg-teal-600"
	ColorOrange  Color = "bg-orange-600"
	ColorLime    Color = "bg-lime-600"
)

// Palette lists the selectable colors, default first.
var Palette = []Color{
	ColorDefault, ColorBlue, ColorEmerald, ColorRed, ColorAmber, ColorPurple,
	ColorPink, ColorIndigo, ColorCyan, ColorTeal, ColorOrange, ColorLime,
}

// Valid reports whether c is part of the palette. The empty color is valid.
func (c Color) Valid() bool {
	if c == "" {
		return true
	}
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}
