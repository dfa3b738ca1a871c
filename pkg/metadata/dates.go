package metadata

import (
	"regexp"
	"strings"
)

var monthNames = map[string]string{
	// nl
	"januari": "January", "februari": "February", "maart": "March", "mei": "May",
	"juni": "June", "juli": "July", "augustus": "August", "oktober": "October",
	"mrt": "March", "okt": "October",
	// de
	"januar": "January", "februar": "February", "märz": "March", "mär": "March", "mai": "May",
	"dezember": "December", "dez": "December",
	// fr
	"janvier": "January", "février": "February", "févr": "February", "mars": "March",
	"avril": "April", "avr": "April", "juin": "June", "juillet": "July", "juil": "July",
	"août": "August", "septembre": "September", "octobre": "October",
	"novembre": "November", "décembre": "December", "déc": "December",
	// es
	"enero": "January", "febrero": "February", "marzo": "March", "abril": "April",
	"mayo": "May", "junio": "June", "julio": "July", "agosto": "August",
	"septiembre": "September", "setiembre": "September", "octubre": "October",
	"noviembre": "November", "diciembre": "December", "ene": "January", "dic": "December",
}

// words dropped before parsing: weekdays and connectors such as "at" or "om"
var droppedWords = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true,
	"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
	"maandag": true, "dinsdag": true, "woensdag": true, "donderdag": true, "vrijdag": true,
	"zaterdag": true, "zondag": true, "ma": true, "di": true, "wo": true, "do": true,
	"vr": true, "za": true, "zo": true,
	"montag": true, "dienstag": true, "mittwoch": true, "donnerstag": true, "freitag": true,
	"samstag": true, "sonntag": true,
	"lundi": true, "mardi": true, "mercredi": true, "jeudi": true, "vendredi": true,
	"samedi": true, "dimanche": true, "lun": true, "mer": true, "jeu": true, "ven": true,
	"sam": true, "dim": true,
	"lunes": true, "martes": true, "miércoles": true, "jueves": true, "viernes": true,
	"sábado": true, "domingo": true,
	"at": true, "om": true, "um": true, "à": true, "a": true, "las": true, "de": true,
	"del": true, "uhr": true, "le": true, "el": true, "on": true,
}

var (
	dateWord   = regexp.MustCompile(`\p{L}+\.?`)
	ordinalDot = regexp.MustCompile(`\b(\d{1,2})\.(\s)`)
)

// translateDate rewrites localized month names to English and drops weekdays
// and connector words, so "maandag 9 februari 2026 om 7:48" becomes
// "9 February 2026 7:48".
func translateDate(raw string) string {
	out := dateWord.ReplaceAllStringFunc(raw, func(word string) string {
		key := strings.ToLower(strings.TrimSuffix(word, "."))
		if droppedWords[key] {
			return ""
		}
		if en, ok := monthNames[key]; ok {
			return en
		}
		return word
	})
	out = ordinalDot.ReplaceAllString(out, "$1$2")
	out = strings.Join(strings.Fields(out), " ")
	return strings.Trim(out, " ,")
}
