package domain

// PlaceholderAvatar is assigned to accounts that have not uploaded one.
const PlaceholderAvatar = "/avatars/placeholder.png"

// DemoAccounts returns the built-in account list that stands in for an
// identity service. Every call returns fresh copies.
func DemoAccounts() []*User {
	prefs := DefaultNotificationPrefs()
	officerPrefs := NotificationPrefs{Push: true, Email: true, SMS: true}

	return []*User{
		{
			ID:            "1",
			Name:          "Alice Sharma",
			Email:         "alice@example.com",
			Role:          RoleCitizen,
			Points:        IntPtr(750),
			Avatar:        "/avatars/alice.png",
			Phone:         "+91 98765 43210",
			Location:      "Pune, Maharashtra",
			JoinDate:      "2024-01-15",
			Bio:           "Neighbourhood volunteer tracking road and water issues.",
			Badges:        []string{"First Report", "Community Voice", "Verified Citizen"},
			Notifications: notify(prefs),
		},
		{
			ID:            "2",
			Name:          "Rajesh Kumar",
			Email:         "officer@example.com",
			Role:          RoleOfficer,
			Avatar:        "/avatars/rajesh.png",
			Phone:         "+91 91234 56780",
			Location:      "Ward 12 Office",
			JoinDate:      "2023-06-01",
			Notifications: notify(officerPrefs),
		},
		{
			ID:            "3",
			Name:          "Priya Nair",
			Email:         "admin@example.com",
			Role:          RoleAdmin,
			Avatar:        "/avatars/priya.png",
			JoinDate:      "2023-01-10",
			Notifications: notify(prefs),
		},
		{
			ID:            "4",
			Name:          "Arjun Mehta",
			Email:         "analyst@example.com",
			Role:          RoleAnalyst,
			Avatar:        "/avatars/arjun.png",
			JoinDate:      "2023-09-20",
			Notifications: notify(prefs),
		},
		{
			ID:            "5",
			Name:          "Vikram Singh",
			Email:         "vikram.officer@example.com",
			Role:          RoleOfficer,
			Avatar:        PlaceholderAvatar,
			JoinDate:      "2024-03-02",
			Notifications: notify(officerPrefs),
		},
	}
}

func notify(p NotificationPrefs) *NotificationPrefs { return &p }
