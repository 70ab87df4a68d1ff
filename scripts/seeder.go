package main

import (
	"encoding/json"
	"log"

	"template-mailer/config"
	"template-mailer/utils"
)

func jsonVariables(vars map[string]string) ([]byte, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return json.Marshal(vars)
}

type seedUser struct {
	Email    string
	Password string
}

type seedTemplate struct {
	OwnerEmail string
	Name       string
	Content    string
	Variables  map[string]string
}

func main() {
	config.InitConfig()
	config.InitDB()
	defer config.CloseDB()

	users := []seedUser{
		{Email: "demo1@example.com", Password: "password1"},
		{Email: "demo2@example.com", Password: "password2"},
	}

	userIDs := make(map[string]int64)
	for _, u := range users {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", u.Email, err)
		}

		var id int64
		err = config.DB.Get(&id, `
			INSERT INTO users (email, password, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			u.Email, hashed)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Email, err)
		}
		userIDs[u.Email] = id
		log.Printf("Seeded user: %s", u.Email)
	}

	templates := []seedTemplate{
		{
			OwnerEmail: "demo1@example.com",
			Name:       "Welcome",
			Content:    "# Welcome, {{name}}!\n\nThanks for joining **{{company}}**.\n\n- Your login: {{email}}\n- Your plan: {{plan}}\n\nVisit [our docs](https://docs.example.com) to get started.",
			Variables:  map[string]string{"company": "Acme Corp", "plan": "starter"},
		},
		{
			OwnerEmail: "demo1@example.com",
			Name:       "Invoice reminder",
			Content:    "Hi {{name}},\n\nInvoice *{{invoice_number}}* is due on {{due_date}}.\n\nBest,\n{{sender}}",
			Variables:  map[string]string{"sender": "Accounts"},
		},
		{
			OwnerEmail: "demo2@example.com",
			Name:       "Follow up",
			Content:    "Hello {{name}},\n\nJust following up on our conversation about {{topic}}.",
			Variables:  map[string]string{},
		},
	}

	for _, t := range templates {
		ownerID, ok := userIDs[t.OwnerEmail]
		if !ok {
			log.Fatalf("No seeded user for template %q", t.Name)
		}

		vars, err := jsonVariables(t.Variables)
		if err != nil {
			log.Fatalf("Failed to encode variables for %q: %v", t.Name, err)
		}

		_, err = config.DB.Exec(`
			INSERT INTO templates (owner_id, name, content, variables, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			ON CONFLICT (owner_id, name) DO NOTHING`,
			ownerID, t.Name, t.Content, vars)
		if err != nil {
			log.Fatalf("Failed to seed template %q: %v", t.Name, err)
		}
		log.Printf("Seeded template: %s", t.Name)
	}

	log.Println("Seeding complete")
}
