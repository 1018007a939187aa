package catalog

import "fmt"

var occupations = []string{
	"Agriculture",
	"Armed/Security Force",
	"Artist/Performer",
	"Business",
	"Caregiver/Babysitter",
	"Construction",
	"Culinary/Cookery",
	"Driver/Lorry",
	"Education/Training",
	"Engineer",
	"Finance/Banking",
	"Government",
	"Health/Medical",
	"Information Technologies",
	"Legal Professional",
	"Other",
	"Press/Media",
	"Professional Sportsperson",
	"Religious Functionary",
	"Researcher/Scientist",
	"Retired",
	"Seafarer",
	"Self-Employed",
	"Service Sector",
	"Student/Trainee",
	"Tourism",
	"Unemployed",
}

func defaultChoices() map[Kind][]Choice {
	occ := make([]Choice, 0, len(occupations))
	for _, o := range occupations {
		occ = append(occ, Choice{Code: o, Label: o})
	}

	return map[Kind][]Choice{
		Visa: {
			{"1", "Tourisme Simple"},
			{"2", "Tourisme Multiple"},
			{"3", "Affaires Simple"},
			{"4", "Affaires Multiple"},
			{"5", "Traitement Simple"},
			{"6", "Traitement Multiple"},
			{"32", "Étudiant Simple"},
			{"34", "Accompagnement Simple"},
			{"35", "Accompagnement Multiple"},
			{"38", "Permis de Travail Simple"},
			{"39", "Permis de Travail Multiple"},
			{"40", "Transit Double"},
			{"77", "Transit Simple"},
		},
		Nationality: {
			{"31", "Algérie"},
			{"1", "États-Unis d'Amérique"},
			{"77", "Royaume-Uni"},
			{"35", "Chine"},
			{"71", "Inde"},
			{"84", "Italie"},
			{"91", "Canada"},
			{"9", "Australie"},
			{"3", "Allemagne"},
			{"55", "France"},
			{"80", "Espagne"},
			{"191", "Turquie"},
		},
		Occupation: occ,
		MaritalStatus: {
			{"0", "Single"},
			{"1", "Married"},
		},
		Gender: {
			{"M", "Male"},
			{"F", "Female"},
		},
		TravelDocument: {
			{"10", "Passeport Ordinaire"},
			{"3", "Passeport Diplomatique"},
			{"2", "Carte d'Identité"},
			{"9", "Autres"},
			{"11", "Document de Voyage pour Réfugiés"},
		},
		Relation: {
			{"Self", "Self"},
			{"Wife", "Wife"},
			{"Husband", "Husband"},
			{"Father", "Father"},
			{"Mother", "Mother"},
			{"Child", "Child"},
			{"Brother", "Brother"},
			{"Sister", "Sister"},
			{"Other", "Other"},
		},
		Slot: slotChoices(),
	}
}

// slotChoices lists the bookable times, 08:00 to 15:20 every 20 minutes.
// The empty code means a random slot.
func slotChoices() []Choice {
	out := []Choice{{Code: "", Label: "Random / Aléatoire"}}
	for h := 8; h < 16; h++ {
		for _, m := range []int{0, 20, 40} {
			if h == 15 && m > 20 {
				continue
			}
			t := fmt.Sprintf("%02d:%02d", h, m)
			out = append(out, Choice{Code: t, Label: t})
		}
	}
	return out
}
