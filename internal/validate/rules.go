package validate

import "strings"

// ruleInfo carries the localized message and fix suggestion for one
// business-rule code.
type ruleInfo struct {
	message    string
	suggestion string
}

// ruleTable maps EN 16931 / XRechnung rule codes to human-readable messages
// and actionable fix suggestions. Sub-coded variants resolve via prefix
// matching (see lookupRule).
var ruleTable = map[string]ruleInfo{
	// Mandatory document fields
	"BR-01": {
		message:    "Der Rechnung fehlt die Spezifikationskennung.",
		suggestion: "Setzen Sie die CustomizationID bzw. Guideline-ID auf das verwendete Profil.",
	},
	"BR-02": {
		message:    "Der Rechnung fehlt die Rechnungsnummer.",
		suggestion: "Vergeben Sie eine eindeutige, fortlaufende Rechnungsnummer.",
	},
	"BR-03": {
		message:    "Der Rechnung fehlt das Rechnungsdatum.",
		suggestion: "Tragen Sie das Ausstellungsdatum der Rechnung ein.",
	},
	"BR-04": {
		message:    "Der Rechnung fehlt der Rechnungstyp-Code.",
		suggestion: "Setzen Sie den Rechnungstyp, z.B. 380 fuer eine Handelsrechnung.",
	},
	"BR-05": {
		message:    "Der Rechnung fehlt der Waehrungscode.",
		suggestion: "Geben Sie die Rechnungswaehrung als ISO-4217-Code an, z.B. EUR.",
	},
	"BR-06": {
		message:    "Der Name des Verkaeufers fehlt.",
		suggestion: "Tragen Sie den vollstaendigen Firmennamen des Verkaeufers ein.",
	},
	"BR-07": {
		message:    "Der Name des Kaeufers fehlt.",
		suggestion: "Tragen Sie den vollstaendigen Firmennamen des Kaeufers ein.",
	},
	"BR-08": {
		message:    "Die Anschrift des Verkaeufers ist unvollstaendig.",
		suggestion: "Ergaenzen Sie Strasse, Postleitzahl, Ort und Laendercode des Verkaeufers.",
	},
	"BR-09": {
		message:    "Der Anschrift des Verkaeufers fehlt der Laendercode.",
		suggestion: "Geben Sie das Land des Verkaeufers als ISO-3166-Code an, z.B. DE.",
	},
	"BR-10": {
		message:    "Die Anschrift des Kaeufers ist unvollstaendig.",
		suggestion: "Ergaenzen Sie Strasse, Postleitzahl, Ort und Laendercode des Kaeufers.",
	},
	"BR-11": {
		message:    "Der Anschrift des Kaeufers fehlt der Laendercode.",
		suggestion: "Geben Sie das Land des Kaeufers als ISO-3166-Code an, z.B. DE.",
	},

	// Amounts
	"BR-12": {
		message:    "Die Summe der Positionsbetraege fehlt.",
		suggestion: "Berechnen Sie die Nettosumme aller Rechnungspositionen.",
	},
	"BR-13": {
		message:    "Der Rechnungsgesamtbetrag ohne Umsatzsteuer fehlt.",
		suggestion: "Tragen Sie den Nettogesamtbetrag der Rechnung ein.",
	},
	"BR-14": {
		message:    "Der Rechnungsgesamtbetrag mit Umsatzsteuer fehlt.",
		suggestion: "Tragen Sie den Bruttogesamtbetrag der Rechnung ein.",
	},
	"BR-15": {
		message:    "Der faellige Zahlbetrag fehlt.",
		suggestion: "Tragen Sie den zur Zahlung faelligen Betrag ein.",
	},

	// Line items
	"BR-21": {
		message:    "Einer Rechnungsposition fehlt die Positionsnummer.",
		suggestion: "Nummerieren Sie jede Rechnungsposition eindeutig.",
	},
	"BR-22": {
		message:    "Einer Rechnungsposition fehlt die Menge.",
		suggestion: "Geben Sie fuer jede Position die abgerechnete Menge an.",
	},
	"BR-25": {
		message:    "Einer Rechnungsposition fehlt die Bezeichnung.",
		suggestion: "Geben Sie fuer jede Position eine Artikel- oder Leistungsbezeichnung an.",
	},
	"BR-26": {
		message:    "Einer Rechnungsposition fehlt der Einzelpreis.",
		suggestion: "Geben Sie fuer jede Position den Nettopreis je Einheit an.",
	},
	"BR-27": {
		message:    "Der Einzelpreis einer Position darf nicht negativ sein.",
		suggestion: "Korrigieren Sie den Einzelpreis; Gutschriften bilden Sie ueber negative Mengen ab.",
	},

	// Cross-check rules: line net = quantity x price, net + tax = gross,
	// per-rate subtotals sum to the aggregate.
	"BR-CO-10": {
		message:    "Die Summe der Positionsbetraege stimmt nicht mit den Einzelpositionen ueberein.",
		suggestion: "Pruefen Sie, ob die Nettosumme der Summe aller Positionsbetraege entspricht.",
	},
	"BR-CO-13": {
		message:    "Der Rechnungsgesamtbetrag ohne Umsatzsteuer ist falsch berechnet.",
		suggestion: "Nettobetrag = Positionssumme minus Nachlaesse plus Zuschlaege.",
	},
	"BR-CO-14": {
		message:    "Der Umsatzsteuergesamtbetrag entspricht nicht der Summe der Steueraufschluesselung.",
		suggestion: "Die Summe der Steuerbetraege je Steuersatz muss den Gesamtsteuerbetrag ergeben.",
	},
	"BR-CO-15": {
		message:    "Bruttobetrag ist nicht gleich Nettobetrag plus Umsatzsteuer.",
		suggestion: "Pruefen Sie die Betragsberechnung: Brutto = Netto + Steuer.",
	},
	"BR-CO-17": {
		message:    "Der Steuerbetrag einer Steueraufschluesselung ist falsch berechnet.",
		suggestion: "Steuerbetrag = Bemessungsgrundlage x Steuersatz / 100, kaufmaennisch gerundet.",
	},
	"BR-CO-25": {
		message:    "Bei offenem Zahlbetrag fehlen Faelligkeitsdatum oder Zahlungsbedingungen.",
		suggestion: "Geben Sie ein Faelligkeitsdatum oder Zahlungsbedingungen an.",
	},

	// German CIUS rules (XRechnung)
	"BR-DE-1": {
		message:    "Die Bankverbindung des Verkaeufers ist unvollstaendig.",
		suggestion: "Geben Sie IBAN und Kontoinhaber der Verkaeuferbankverbindung an.",
	},
	"BR-DE-15": {
		message:    "Die Leitweg-ID (Kaeuferreferenz) fehlt oder ist ungueltig.",
		suggestion: "Rechnungen an oeffentliche Auftraggeber benoetigen eine gueltige Leitweg-ID im Feld Kaeuferreferenz.",
	},
	"BR-DE-18": {
		message:    "Die Zahlungsbedingungen sind nicht maschinenlesbar formatiert.",
		suggestion: "Verwenden Sie das Skonto-Format der XRechnung-Spezifikation.",
	},
	"BR-DE-21": {
		message:    "Die Spezifikationskennung entspricht nicht der XRechnung.",
		suggestion: "Setzen Sie die CustomizationID auf die XRechnung-Kennung der verwendeten Version.",
	},
	"BR-DE-23": {
		message:    "Bei Zahlungsart Ueberweisung fehlen die Ueberweisungsangaben.",
		suggestion: "Geben Sie IBAN und optional BIC fuer die Ueberweisung an.",
	},

	// VAT identifier format
	"BR-CO-09": {
		message:    "Die Umsatzsteuer-Identifikationsnummer hat kein gueltiges Laenderpraefix.",
		suggestion: "Stellen Sie der USt-IdNr. den ISO-Laendercode voran, z.B. DE123456789.",
	},
}

// lookupRule resolves a rule code to its message and suggestion. Sub-coded
// variants ("BR-DE-15-1") fall back to their longest known prefix.
func lookupRule(code string) (message, suggestion string, ok bool) {
	if info, found := ruleTable[code]; found {
		return info.message, info.suggestion, true
	}

	// Strip trailing segments until a known code remains.
	for {
		idx := strings.LastIndex(code, "-")
		if idx <= 0 {
			return "", "", false
		}
		code = code[:idx]
		if info, found := ruleTable[code]; found {
			return info.message, info.suggestion, true
		}
	}
}
