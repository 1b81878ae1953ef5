package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "session":
		sessionCmd(apiURL, args)
	case "seed":
		seedCmd(apiURL, args)
	case "followups":
		followUpsCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`CRM Simulator - Development tool for exercising the auth and customer API

USAGE:
  crmsim <command> [options]

COMMANDS:
  session    Register a user, call /me, refresh the token, and log out
  seed       Register (or log in) a user and create demo customers
  followups  List today's follow-ups for a user
  help       Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Walk through a full session lifecycle with a throwaway account
  crmsim session

  # Create 20 demo customers for ana@example.com
  crmsim seed --email=ana@example.com --password=secret123 --count=20

  # Show follow-ups due on a given day
  crmsim followups --email=ana@example.com --password=secret123 --date=2026-03-01`)
}

func sessionCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	password := fs.String("password", "secret123", "Password for the throwaway account")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	email := fmt.Sprintf("sim-%d@example.com", time.Now().UnixNano())

	fmt.Println("=== CRM Simulator: Session Flow ===")
	fmt.Println()

	fmt.Print("Registering... ")
	user, err := client.Register("Simulated User", email, *password)
	if err != nil {
		fail(err)
	}
	fmt.Printf("OK (id: %d, email: %s)\n", user.ID, user.Email)

	fmt.Print("Fetching profile... ")
	if _, err := client.Me(); err != nil {
		fail(err)
	}
	fmt.Println("OK")

	fmt.Print("Refreshing access token... ")
	before := client.Token()
	if err := client.Refresh(); err != nil {
		fail(err)
	}
	if client.Token() == before {
		fmt.Println("OK (token unchanged)")
	} else {
		fmt.Println("OK (new token)")
	}

	sessions, err := client.Sessions()
	if err != nil {
		fmt.Printf("Warning: failed to list sessions: %v\n", err)
	} else {
		fmt.Printf("Active sessions: %d\n", len(sessions))
	}

	fmt.Print("Logging out... ")
	if err := client.Logout(false); err != nil {
		fail(err)
	}
	fmt.Println("OK")

	fmt.Println()
	fmt.Printf("Silent rotations observed: %d\n", client.Rotations())
}

var demoCustomers = []struct {
	name  string
	phone string
	tags  []string
}{
	{"Ayse Yilmaz", "0532 123 45 67", []string{"vip", "istanbul"}},
	{"Mehmet Demir", "+90 (533) 987 6543", []string{"lead"}},
	{"Elif Kaya", "0541 555 12 34", []string{"vip"}},
	{"Can Ozturk", "0505 222 33 44", []string{"wholesale", "ankara"}},
	{"Zeynep Arslan", "0544 777 88 99", []string{"lead", "istanbul"}},
}

func seedCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	email := fs.String("email", "demo@example.com", "Account email")
	password := fs.String("password", "secret123", "Account password")
	count := fs.Int("count", 10, "Number of customers to create")
	fs.Parse(args)

	if *count < 1 {
		fmt.Println("Error: --count must be positive")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	signIn(client, *email, *password)

	fmt.Printf("Creating %d customers:\n", *count)
	today := time.Now()
	for i := 0; i < *count; i++ {
		demo := demoCustomers[i%len(demoCustomers)]
		name := demo.name
		if i >= len(demoCustomers) {
			name = fmt.Sprintf("%s %d", demo.name, i/len(demoCustomers)+1)
		}
		// Spread follow-ups over the next week so the followups command has data.
		followUp := today.AddDate(0, 0, i%7).Format("2006-01-02")

		customer, err := client.CreateCustomer(name, demo.phone, demo.tags, followUp)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s -> %s\n", i+1, *count, customer.Name, customer.WhatsAppLink)
	}
}

func followUpsCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("followups", flag.ExitOnError)
	email := fs.String("email", "demo@example.com", "Account email")
	password := fs.String("password", "secret123", "Account password")
	date := fs.String("date", "", "Day to list (YYYY-MM-DD, default today)")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	signIn(client, *email, *password)

	customers, day, err := client.FollowUps(*date)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Follow-ups for %s: %d\n", day, len(customers))
	for _, c := range customers {
		fmt.Printf("  - %s (%s)\n    %s\n", c.Name, c.Phone, c.WhatsAppLink)
	}
}

// signIn logs in, registering the account first when it does not exist yet.
func signIn(client *APIClient, email, password string) {
	if _, err := client.Login(email, password); err == nil {
		return
	}
	if _, err := client.Register("Demo User", email, password); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Printf("FAILED\n  Error: %v\n", err)
	os.Exit(1)
}
