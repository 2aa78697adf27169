package i18n

var tables = map[Language][keyCount]string{
	EN: {
		GoalReachedSingle:             "Goal \"{title}\" reached!",
		GoalReachedMulti:              "{count} goals reached!",
		GoalReachedNotificationTitle:  "Goal reached",
		GoalReachedNotificationDesc:   "Alerts when one of your goals reaches its target",
		GoalReachedNotificationBody:   "{title}: {message}",
		GoalReachedPopupExpense:       "your spending has reached the limit you set.",
		GoalReachedPopupIncomeBalance: "congratulations, your savings have reached the target!",
		GoalDeadlineTitle:             "Goal deadline reminder",
		GoalDeadlineBody:              "{title} is due {days}. Progress {current} of {target} ({percent}%).",
		DeadlineToday:                 "today",
		LabelGoal:                     "Goal",
		SummaryRangeToday:             "Today",
		SummaryRangeWeek:              "Last 7 days",
		SummaryRangeMonth:             "This month",
		SummaryRangeYear:              "This year",
		SummaryRangeAll:               "All time",
		ErrLoginFailed:                "Wrong username or password.",
		ErrSignupFailed:               "Could not create the account.",
		ErrUsernameTaken:              "That username is already taken.",
		ErrProfileSaveFailed:          "Could not save the profile.",
		ErrInvalidInput:               "Please check the data you entered.",
		ErrNotFound:                   "Data not found.",
		ErrUnauthorized:               "Please sign in again.",
		ErrServer:                     "Something went wrong. Please try again.",
		ErrRateLimited:                "Too many attempts. Please wait a moment.",
	},
	ID: {
		GoalReachedSingle:             "Impian \"{title}\" tercapai!",
		GoalReachedMulti:              "{count} impian tercapai!",
		GoalReachedNotificationTitle:  "Impian tercapai",
		GoalReachedNotificationDesc:   "Pemberitahuan saat impianmu mencapai target",
		GoalReachedNotificationBody:   "{title}: {message}",
		GoalReachedPopupExpense:       "pengeluaranmu sudah mencapai batas yang kamu tetapkan.",
		GoalReachedPopupIncomeBalance: "selamat, tabunganmu sudah mencapai target!",
		GoalDeadlineTitle:             "Pengingat tenggat impian",
		GoalDeadlineBody:              "{title} jatuh tempo {days}. Progres {current} dari {target} ({percent}%).",
		DeadlineToday:                 "hari ini",
		LabelGoal:                     "Impian",
		SummaryRangeToday:             "Hari ini",
		SummaryRangeWeek:              "7 hari terakhir",
		SummaryRangeMonth:             "Bulan ini",
		SummaryRangeYear:              "Tahun ini",
		SummaryRangeAll:               "Semua",
		ErrLoginFailed:                "Username atau kata sandi salah.",
		ErrSignupFailed:               "Gagal membuat akun.",
		ErrUsernameTaken:              "Username sudah dipakai.",
		ErrProfileSaveFailed:          "Gagal menyimpan profil.",
		ErrInvalidInput:               "Periksa kembali data yang kamu masukkan.",
		ErrNotFound:                   "Data tidak ditemukan.",
		ErrUnauthorized:               "Silakan masuk kembali.",
		ErrServer:                     "Terjadi kesalahan. Coba lagi.",
		ErrRateLimited:                "Terlalu banyak percobaan. Tunggu sebentar.",
	},
}
