package competition

type ScheduleSlot struct {
	Day      string
	Date     string
	Month    string
	Year     string
	Time     string
	Title    string
	Location string
}

type Judge struct {
	Name  string
	Title string
	Bio   string
	Image string
}

type Image struct {
	Src string
	Alt string
}

type Bullet struct {
	Text string
	Sub  []string
}

type RulesSection struct {
	Number  int
	Title   string
	Bullets []Bullet
}

type Level struct {
	Name string
	Ages string
}

type Contact struct {
	Phones       []string
	FooterPhones string
	Emails       []string
	Address      string
	WhatsApp     string
}

const (
	EVENT_NAME = "Quran Fest '26"
	EVENT_YEAR = 2026
	FEE        = "£5.00 / Participant"
)

var Schedule = []ScheduleSlot{
	{Day: "Friday", Date: "June 5", Month: "June", Year: "2026", Time: "14:00 - 18:00", Title: "Preliminary Rounds (Hifz)", Location: "Hall A"},
	{Day: "Saturday", Date: "June 6", Month: "June", Year: "2026", Time: "09:00 - 13:00", Title: "Start of 5 & 10 Juz Categories", Location: "Hall B"},
	{Day: "Saturday", Date: "June 6", Month: "June", Year: "2026", Time: "14:00 - 19:00", Title: "Tilawah Qualification", Location: "Main Auditorium"},
	{Day: "Sunday", Date: "June 7", Month: "June", Year: "2026", Time: "10:00 - 16:00", Title: "Grand Finale (All Categories)", Location: "Main Auditorium"},
	{Day: "Sunday", Date: "June 7", Month: "June", Year: "2026", Time: "18:00 - 20:00", Title: "Award Ceremony", Location: "Main Auditorium"},
}

var Judges = []Judge{
	{
		Name:  "Sheikh Abdullah Basfar",
		Title: "World Renowned Qari",
		Bio:   "Secretary General of the Holy Quran Memorization International Organization.",
		Image: "https://via.placeholder.com/150?text=Sheikh+Abdullah",
	},
	{
		Name:  "Dr. Ahmed Al-Maasarawi",
		Title: "Former Sheikh Al-Qurra of Egypt",
		Bio:   "An authority in the ten Qira'at and a professor of Hadith.",
		Image: "https://via.placeholder.com/150?text=Dr.+Ahmed",
	},
	{
		Name:  "Sheikh Abu Bakr Al-Shatri",
		Title: "Imam & Qari",
		Bio:   "Known for his emotional recitation and dedication to teaching Tajweed.",
		Image: "https://via.placeholder.com/150?text=Sheikh+Shatri",
	},
}

var Gallery = []Image{
	{Src: "https://via.placeholder.com/600x400?text=Competition+2025", Alt: "Competition 2025 Hall"},
	{Src: "https://via.placeholder.com/600x400?text=Top+Reciter", Alt: "Winner of 2025"},
	{Src: "https://via.placeholder.com/600x400?text=Judges+Panel", Alt: "Judges Evaluation"},
	{Src: "https://via.placeholder.com/600x400?text=Award+Ceremony", Alt: "Prize Distribution"},
	{Src: "https://via.placeholder.com/600x400?text=Audience", Alt: "Focused Audience"},
	{Src: "https://via.placeholder.com/600x400?text=Kids+Category", Alt: "Young Participants"},
}

var Levels = []Level{
	{Name: "Level 1", Ages: "8 & Below"},
	{Name: "Level 2", Ages: "9 - 13 Years"},
	{Name: "Level 3", Ages: "9 - 18 Years"},
	{Name: "Level 4", Ages: "9 - 18 Years"},
}

var Eligibility = []string{
	"Must be a resident of the UK.",
	"Must not be a previous 1st place winner in the same category.",
	"Must recite with Tajweed rules.",
}

var Criteria = []string{
	"Memorization Accuracy",
	"Tajweed Rules",
	"Voice & Melody (Tilawah)",
}

var Rules = []RulesSection{
	{
		Number: 1,
		Title:  "Competition Rounds & Structure",
		Bullets: []Bullet{
			{Text: "The Preliminary Round will be conducted online via Zoom. Participants must ensure that the Zoom application is downloaded and installed on their device before the competition."},
			{Text: "The Final Round will be conducted physically at the designated venue. Further details regarding the venue and schedule will be shared with qualified participants in due course."},
			{Text: "Spaces are allocated strictly on a first come first serve basis. Registration for each level will be closed before the deadline on reaching the maximum number of participants for that level."},
		},
	},
	{
		Number: 2,
		Title:  "Zoom & Online Guidelines",
		Bullets: []Bullet{
			{Text: "Only the participants will be allowed into the Zoom meeting one at a time. A separate YouTube link will be provided for parents and others to view the competition."},
			{Text: "Individual time slots and Zoom + YouTube links will be emailed to all participants three days before the competition. If you have not received these, please contact us immediately."},
			{Text: "It is very important that participants log into the Zoom meeting at the beginning of their allocated time slot. Participants have to remain in the Zoom waiting room and will only be allowed into the meeting by the moderator one at a time for their turn only."},
			{Text: "The Zoom participant display name must match the participant registered name. This is for correct identification and smooth running of the competition."},
			{Text: "Elder female students are required to wear a niqab that covers their face."},
		},
	},
	{
		Number: 3,
		Title:  "Recitation & Evaluation Format",
		Bullets: []Bullet{
			{Text: "The competition for each level will be for a total duration of 1.5-2 hours. Each participant has been provided with a time slot within this duration and must join on the Zoom link at the start of the given time. Each participant will then be allowed into the meeting one at a time upon their turn."},
			{Text: "We highly recommend the participant to be alone in a separate quiet room during their recitation to avoid any distractions and to ensure clarity."},
			{Text: "Prompting or helping the participant in any manner will not be entertained and will result in immediate disqualification of the participant."},
			{
				Text: "Participants will be asked questions by a panel of expert judges in a child friendly and age appropriate manner. Questions can be asked in any of the following 2 ways:",
				Sub: []string{
					"The name of a Surah will be given and the participants will be asked to recite it.",
					"A random ayah from a Surah will be recited by the judge and the participant will be asked to continue.",
				},
			},
			{
				Text: "The time allotted per participant for each level is as follows:",
				Sub: []string{
					"Level 1 & 2: 3-4 minutes.",
					"Level 3 & 4: 5-6 minutes.",
				},
			},
			{Text: "The majority of the marks will be awarded based on Hifz proficiency and accurate recitation with proper Tajweed. A smaller percentage will be allocated for Maqamat (melodic rendition) and overall presentation. A detailed breakdown of the marking criteria will be shared via email prior to the competition."},
		},
	},
	{
		Number: 4,
		Title:  "Important Conditions & Technical Requirements",
		Bullets: []Bullet{
			{Text: "All instructions and procedure will be discussed at the beginning of each level competition so it is necessary for all parents to be listening in on the YouTube link at the start of their respective level."},
			{Text: "Please make sure you test your Zoom voice and video (microphone and webcam) prior to the competition to avoid any technical complications on the day."},
			{Text: "If participants face any technical challenges during the competition, we request you to please leave and re-join the meeting in order to save any delay for other participants."},
			{Text: "If you are shortlisted for the final round but unable to attend in person, you will be disqualified and the participant with the next highest marks will be selected."},
			{Text: "If you require any support before or during the competition, please contact our support team."},
		},
	},
}

var ContactInfo = Contact{
	Phones:       []string{"+91 81 3789 8323 | +91 95627 42433", "+44 791 704 4585"},
	FooterPhones: "07917 044 585 | 07534 039 748",
	Emails:       []string{"londonquranfest@gmail.com", "academy@alihsan.co.uk"},
	Address:      "Al Ihsan Academy, London, UK",
	WhatsApp:     "https://wa.me/918137898323",
}
