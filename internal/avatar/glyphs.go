package avatar

import "github.com/jscyril/golang_lipsync_avatar/api"

// Mouth is the terminal rendition of a viseme graphic
type Mouth struct {
	Sounds string
	Art    [3]string
}

// Viseme ids follow the 22 shape set used by the timeline generator: 0 is
// silence, 21 closes the lips for p, b and m.
var mouths = map[string]Mouth{
	"0":  {"silence", [3]string{"         ", "  ─────  ", "         "}},
	"1":  {"æ ə ʌ", [3]string{"  ╭───╮  ", "  │   │  ", "  ╰───╯  "}},
	"2":  {"ɑ", [3]string{" ╭─────╮ ", " │     │ ", " ╰─────╯ "}},
	"3":  {"ɔ", [3]string{"  ╭───╮  ", " (     ) ", "  ╰───╯  "}},
	"4":  {"ɛ ʊ", [3]string{" ╭─────╮ ", " ╰─────╯ ", "         "}},
	"5":  {"ɝ", [3]string{"  ╭───╮  ", "  ╰───╯  ", "         "}},
	"6":  {"j i ɪ", [3]string{"╭───────╮", "╰───────╯", "         "}},
	"7":  {"w u", [3]string{"   ╭─╮   ", "   ╰─╯   ", "         "}},
	"8":  {"o", [3]string{"  ╭───╮  ", "  │ o │  ", "  ╰───╯  "}},
	"9":  {"aʊ", [3]string{" ╭─────╮ ", " │  ○  │ ", " ╰─────╯ "}},
	"10": {"ɔɪ", [3]string{"  ╭───╮  ", " (  ─  ) ", "  ╰───╯  "}},
	"11": {"aɪ", [3]string{" ╭─────╮ ", " │  ─  │ ", " ╰─────╯ "}},
	"12": {"h", [3]string{"  ╭───╮  ", "  │ ‿ │  ", "  ╰───╯  "}},
	"13": {"ɹ", [3]string{"   ╭─╮   ", "  (   )  ", "   ╰─╯   "}},
	"14": {"l", [3]string{" ╭─────╮ ", " │  ▾  │ ", " ╰─────╯ "}},
	"15": {"s z", [3]string{"╭───────╮", "│▔▔▔▔▔▔▔│", "╰───────╯"}},
	"16": {"ʃ tʃ dʒ ʒ", [3]string{"  ╭───╮  ", "  │▔▔▔│  ", "  ╰───╯  "}},
	"17": {"ð", [3]string{" ╭─────╮ ", " │▔▾▾▾▔│ ", " ╰─────╯ "}},
	"18": {"f v", [3]string{" ┌─────┐ ", " │▔▔▔▔▔│ ", " └─────┘ "}},
	"19": {"d t n θ", [3]string{" ╭─────╮ ", " │ ▔▔▔ │ ", " ╰─────╯ "}},
	"20": {"k g ŋ", [3]string{" ╭─────╮ ", " │     │ ", " ╰──▴──╯ "}},
	"21": {"p b m", [3]string{"         ", "  ═════  ", "         "}},
}

// MouthFor returns the terminal mouth for visemeID, the idle mouth when the
// id is unknown.
func MouthFor(visemeID string) Mouth {
	if m, ok := mouths[visemeID]; ok {
		return m
	}
	return mouths[api.IdleVisemeID]
}
