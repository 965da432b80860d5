package model

// ExportSettings holds output scaling and machine configuration.
type ExportSettings struct {
	// Raster / report settings
	CellSize   float64 `json:"cell_size"`   // mm per grid cell for G-code, DXF and PDF
	PixelsCell int     `json:"pixels_cell"` // px per grid cell for PNG output

	// CNC / plotter settings
	FeedRate     float64 `json:"feed_rate"`     // Drawing/cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate"`   // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed"` // RPM (router profiles only)
	SafeZ        float64 `json:"safe_z"`        // Safe retract height mm
	CutDepth     float64 `json:"cut_depth"`     // Total material thickness mm
	PassDepth    float64 `json:"pass_depth"`    // Depth per pass mm

	// GCode post-processor profile
	GCodeProfile string `json:"gcode_profile"`
}

// DefaultExportSettings matches the pen plotter the layouts were first drawn on:
// 4 mm cells at F1000, 20 px cells for images.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		CellSize:     4.0,
		PixelsCell:   20,
		FeedRate:     1000.0,
		PlungeRate:   300.0,
		SpindleSpeed: 18000,
		SafeZ:        5.0,
		CutDepth:     3.0,
		PassDepth:    1.5,
		GCodeProfile: "Plotter",
	}
}

// GCodeProfile defines a post-processor configuration for a controller.
// Pen profiles (PenUp/PenDown set) lift a servo pen instead of moving Z.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"
	IsBuiltIn   bool   `json:"-"`

	// Startup codes
	StartCode    []string `json:"start_code"`
	SpindleStart string   `json:"spindle_start"` // e.g. "M3 S%d"
	SpindleStop  string   `json:"spindle_stop"`

	// Pen control
	PenUp   string `json:"pen_up,omitempty"`   // e.g. "M03 S250"
	PenDown string `json:"pen_down,omitempty"` // e.g. "M03 S90"
	Dwell   string `json:"dwell,omitempty"`    // pause after each pen move, e.g. "G4 P0.5"

	// Motion
	RapidMove string `json:"rapid_move"`
	FeedMove  string `json:"feed_move"`

	// End codes
	EndCode []string `json:"end_code"`

	// Comment style
	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// IsPen reports whether the profile drives a pen instead of a Z axis.
func (p GCodeProfile) IsPen() bool {
	return p.PenUp != "" && p.PenDown != ""
}

// GCodeProfiles are the built-in profiles.
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Plotter",
		Description:   "Servo pen plotter on Grbl (M03 S sets pen angle)",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G21", "G90"},
		PenUp:         "M03 S250",
		PenDown:       "M03 S90",
		Dwell:         "G4 P0.5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M03 S250", "G0 X0 Y0"},
		CommentPrefix: ";",
		DecimalPlaces: 0,
	},
	{
		Name:          "Grbl",
		Description:   "Standard Grbl router",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M5", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// CustomProfiles are user-defined profiles loaded from disk.
var CustomProfiles []GCodeProfile

// AllProfiles returns built-in profiles followed by custom ones.
func AllProfiles() []GCodeProfile {
	all := make([]GCodeProfile, 0, len(GCodeProfiles)+len(CustomProfiles))
	all = append(all, GCodeProfiles...)
	all = append(all, CustomProfiles...)
	return all
}

// GetProfile returns a profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range AllProfiles() {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}

// GetProfileNames returns the names of all available profiles.
func GetProfileNames() []string {
	var names []string
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}

// IsBuiltInProfile reports whether name belongs to a built-in profile.
func IsBuiltInProfile(name string) bool {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// AddCustomProfile adds p to the custom profiles, replacing one with the same
// name. It reports whether a profile was replaced.
func AddCustomProfile(p GCodeProfile) (bool, error) {
	if p.Name == "" {
		return false, NewError(ErrCodeInvalidConfig, "profile needs a name")
	}
	if IsBuiltInProfile(p.Name) {
		return false, NewError(ErrCodeInvalidConfig, "%q is a built-in profile", p.Name)
	}
	p.IsBuiltIn = false
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == p.Name {
			CustomProfiles[i] = p
			return true, nil
		}
	}
	CustomProfiles = append(CustomProfiles, p)
	return false, nil
}

// RemoveCustomProfile deletes the custom profile called name.
func RemoveCustomProfile(name string) error {
	if IsBuiltInProfile(name) {
		return NewError(ErrCodeInvalidConfig, "built-in profile %q cannot be removed", name)
	}
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == name {
			CustomProfiles = append(CustomProfiles[:i], CustomProfiles[i+1:]...)
			return nil
		}
	}
	return NewError(ErrCodeInvalidInput, "no custom profile %q", name)
}
