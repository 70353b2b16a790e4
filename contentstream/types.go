package contentstream

// LineCap represents the line cap style (J operator).
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin represents the line join style (j operator).
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Operators emitted by the builder.
const (
	OpSave          = "q"
	OpRestore       = "Q"
	OpBeginText     = "BT"
	OpEndText       = "ET"
	OpFont          = "Tf"
	OpTextMatrix    = "Tm"
	OpShowText      = "Tj"
	OpShowTextArray = "TJ"
	OpFillRGB       = "rg"
	OpStrokeRGB     = "RG"
	OpLineWidth     = "w"
	OpLineCap       = "J"
	OpLineJoin      = "j"
	OpDash          = "d"
	OpRect          = "re"
	OpMoveTo        = "m"
	OpLineTo        = "l"
	OpFill          = "f"
	OpStroke        = "S"
	OpFillStroke    = "B"
)
