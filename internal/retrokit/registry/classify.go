package registry

import "strings"

// Platform is the result of classifying a core id.
type Platform struct {
	ID          string
	Name        string
	Description string
}

// Unknown is returned by Classify when no rule matches.
//
//nolint:gochecknoglobals
var Unknown = Platform{ID: "unknown", Name: "Multiple Platforms", Description: "Multi-platform core"}

type rule struct {
	keywords []string
	platform Platform
}

// rules are evaluated in order; the first match wins.
//
//nolint:gochecknoglobals
var rules = []rule{
	{[]string{"fceumm", "nestopia", "quicknes", "mesen"}, Platform{"nes", "Nintendo Entertainment System", "NES emulator core"}},
	{[]string{"snes9x", "bsnes", "mednafen_snes", "mesen-s"}, Platform{"snes", "Super Nintendo", "SNES emulator core"}},
	{[]string{"mupen64", "parallel_n64"}, Platform{"n64", "Nintendo 64", "N64 emulator core"}},
	{[]string{"gambatte", "sameboy", "gearboy", "tgbdual"}, Platform{"gb", "Game Boy / Game Boy Color", "GB/GBC emulator core"}},
	{[]string{"mgba", "vba", "gpsp", "mednafen_gba"}, Platform{"gba", "Game Boy Advance", "GBA emulator core"}},
	{[]string{"genesis_plus_gx", "picodrive", "blastem"}, Platform{"genesis", "Sega Genesis / Mega Drive", "Genesis/MD emulator core"}},
	{[]string{"gearsystem", "picodrive", "smsplus"}, Platform{"sms", "Sega Master System", "SMS emulator core"}},
	{[]string{"mednafen_psx", "pcsx_rearmed", "swanstation", "beetle_psx"}, Platform{"ps1", "PlayStation 1", "PS1 emulator core"}},
	{[]string{"pcsx2", "play"}, Platform{"ps2", "PlayStation 2", "PS2 emulator core"}},
	{[]string{"ppsspp"}, Platform{"psp", "PlayStation Portable", "PSP emulator core"}},
	{[]string{"desmume", "melonds"}, Platform{"nds", "Nintendo DS", "DS emulator core"}},
	{[]string{"citra", "panda3ds"}, Platform{"3ds", "Nintendo 3DS", "3DS emulator core"}},
	{[]string{"dolphin"}, Platform{"gc", "GameCube / Wii", "GameCube/Wii emulator core"}},
	{[]string{"flycast"}, Platform{"dreamcast", "Sega Dreamcast", "Dreamcast emulator core"}},
	{[]string{"mednafen_saturn", "yabause", "yabasanshiro", "kronos"}, Platform{"saturn", "Sega Saturn", "Saturn emulator core"}},
	{[]string{"stella", "prosystem"}, Platform{"atari2600", "Atari 2600", "Atari 2600 emulator core"}},
	{[]string{"a5200", "prosystem"}, Platform{"atari7800", "Atari 5200/7800", "Atari emulator core"}},
	{[]string{"lynx", "handy"}, Platform{"lynx", "Atari Lynx", "Lynx emulator core"}},
	{[]string{"neocd", "geolith", "fbneo", "fbalpha"}, Platform{"neogeo", "Neo Geo", "Neo Geo emulator core"}},
	{[]string{"mame", "fbneo", "fbalpha"}, Platform{"arcade", "Arcade", "Arcade emulator core"}},
	{[]string{"dosbox"}, Platform{"dos", "MS-DOS", "DOS emulator core"}},
	{[]string{"mednafen_pce", "mednafen_supergrafx"}, Platform{"pce", "PC Engine / TurboGrafx-16", "PC Engine emulator core"}},
	{[]string{"mednafen_wswan"}, Platform{"wonderswan", "WonderSwan", "WonderSwan emulator core"}},
	{[]string{"mednafen_vb"}, Platform{"virtualboy", "Virtual Boy", "Virtual Boy emulator core"}},
	{[]string{"atari800"}, Platform{"atari800", "Atari 8-bit", "Atari 800 emulator core"}},
	{[]string{"puae"}, Platform{"amiga", "Commodore Amiga", "Amiga emulator core"}},
	{[]string{"vice"}, Platform{"c64", "Commodore 64", "C64 emulator core"}},
	{[]string{"bluemsx", "fmsx"}, Platform{"msx", "MSX", "MSX emulator core"}},
	{[]string{"virtualjaguar"}, Platform{"jaguar", "Atari Jaguar", "Jaguar emulator core"}},
	{[]string{"opera"}, Platform{"3do", "3DO", "3DO emulator core"}},
	{[]string{"cdi", "same_cdi"}, Platform{"cdi", "Philips CD-i", "CD-i emulator core"}},
	{[]string{"vecx"}, Platform{"vectrex", "Vectrex", "Vectrex emulator core"}},
	{[]string{"gw_libretro"}, Platform{"gameandwatch", "Game & Watch", "Game & Watch emulator core"}},
}

// Classify maps a core id or filename to a platform by substring rules.
// It never fails; unmatched ids map to Unknown.
func Classify(id string) Platform {
	lower := strings.ToLower(id)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.platform
			}
		}
	}
	return Unknown
}
