package calendar

import (
	"time"

	"github.com/hebcal/hdate"
)

type Holiday int

const (
	NoHoliday Holiday = iota
	Pesach
	CholHamoedPesach
	Shavuos
	TishaBAv
	RoshHashana
	YomKippur
	Succos
	CholHamoedSuccos
	HoshanaRabba
	SheminiAtzeres
	SimchasTorah
	Purim
)

var holidayNames = map[Holiday]string{
	NoHoliday:        "none",
	Pesach:           "pesach",
	CholHamoedPesach: "chol_hamoed_pesach",
	Shavuos:          "shavuos",
	TishaBAv:         "tisha_bav",
	RoshHashana:      "rosh_hashana",
	YomKippur:        "yom_kippur",
	Succos:           "succos",
	CholHamoedSuccos: "chol_hamoed_succos",
	HoshanaRabba:     "hoshana_rabba",
	SheminiAtzeres:   "shemini_atzeres",
	SimchasTorah:     "simchas_torah",
	Purim:            "purim",
}

func (h Holiday) String() string {
	if name, ok := holidayNames[h]; ok {
		return name
	}
	return "unknown"
}

// IsYomTov reports whether work is prohibited on the day, i.e. the night
// after it ends is treated like the night after Shabbos.
func (h Holiday) IsYomTov() bool {
	switch h {
	case Pesach, Shavuos, RoshHashana, YomKippur, Succos, SheminiAtzeres, SimchasTorah:
		return true
	default:
		return false
	}
}

// opensAtCandleLightingEve lists holidays whose eve is handled like Erev Shabbos.
func (h Holiday) opensAtCandleLightingEve() bool {
	switch h {
	case Pesach, Succos, Shavuos, RoshHashana, SheminiAtzeres, SimchasTorah:
		return true
	default:
		return false
	}
}

func (h Holiday) isFast() bool {
	return h == YomKippur || h == TishaBAv
}

// HolidayOn returns the diaspora holiday falling on the civil date of day.
func HolidayOn(day time.Time) Holiday {
	hd := hdate.FromGregorian(day.Year(), day.Month(), day.Day())
	d := hd.Day()

	switch hd.Month() {
	case hdate.Nisan:
		switch {
		case d == 15 || d == 16 || d == 21 || d == 22:
			return Pesach
		case d >= 17 && d <= 20:
			return CholHamoedPesach
		}
	case hdate.Sivan:
		if d == 6 || d == 7 {
			return Shavuos
		}
	case hdate.Av:
		// the fast is pushed to Sunday when 9 Av is Shabbos
		if d == 9 && day.Weekday() != time.Saturday {
			return TishaBAv
		}
		if d == 10 && day.Weekday() == time.Sunday {
			return TishaBAv
		}
	case hdate.Tishrei:
		switch {
		case d == 1 || d == 2:
			return RoshHashana
		case d == 10:
			return YomKippur
		case d == 15 || d == 16:
			return Succos
		case d >= 17 && d <= 20:
			return CholHamoedSuccos
		case d == 21:
			return HoshanaRabba
		case d == 22:
			return SheminiAtzeres
		case d == 23:
			return SimchasTorah
		}
	case hdate.Adar1:
		if d == 14 && !hdate.IsLeapYear(hd.Year()) {
			return Purim
		}
	case hdate.Adar2:
		if d == 14 {
			return Purim
		}
	}
	return NoHoliday
}
