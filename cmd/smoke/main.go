package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	baseURL  = flag.String("base", "http://localhost:3000/api", "API base URL")
	email    = flag.String("email", "", "account email (a fresh one is registered when empty)")
	password = flag.String("password", "smoke-test-pass", "account password")
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func sendRequest(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, *baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// step runs one request, prints it and exits on transport errors or non-2xx.
func step(title, method, path, token string, body interface{}) []byte {
	color.Yellow("\n%s", title)
	resp, raw, err := sendRequest(method, path, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 300 {
		color.Red("Status: %s", resp.Status)
		prettyPrint(raw)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(raw)
	return raw
}

func data(raw []byte, out interface{}) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		color.Red("Unexpected body: %v", err)
		os.Exit(1)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		color.Red("Unexpected data: %v", err)
		os.Exit(1)
	}
}

func main() {
	flag.Parse()
	color.Cyan("🚀 CouncellorX intake walkthrough against %s\n", *baseURL)

	// 0. Stateless analysis
	step("[PUBLIC] Analyze a statement", "POST", "/analyze", "", map[string]interface{}{
		"statement": "My landlord kept my deposit after I moved out.",
		"caseType":  "rental_loan",
	})

	// 1. Account
	account := *email
	if account == "" {
		suffix := time.Now().Unix()
		account = fmt.Sprintf("smoke%d@example.com", suffix)
		step("[AUTH] Register", "POST", "/v1/auth/register", "", map[string]string{
			"email":    account,
			"password": *password,
			"username": fmt.Sprintf("smoke_%d", suffix),
		})
	}

	var login struct {
		AccessToken string `json:"access_token"`
	}
	data(step("[AUTH] Login", "POST", "/v1/auth/login", "", map[string]string{
		"identifier": account,
		"password":   *password,
	}), &login)
	token := login.AccessToken

	// 2. Session
	var session struct {
		Id string `json:"id"`
	}
	data(step("[CHAT] Create session", "POST", "/v1/chat/sessions", token, nil), &session)
	intake := "/v1/intake/" + session.Id

	// 3. Wizard
	step("[INTAKE] Greet", "POST", intake+"/messages", token, map[string]string{"content": "Hello"})
	step("[INTAKE] Case type", "POST", intake+"/case-type", token, map[string]string{"caseType": "divorce"})
	step("[INTAKE] Nature", "POST", intake+"/nature", token, map[string]string{"nature": "civil"})
	step("[INTAKE] Statement", "POST", intake+"/messages", token, map[string]string{
		"content": "My spouse and I separated two years ago and want a mutual divorce.",
		"lang":    "en",
	})
	step("[INTAKE] Choose upload", "POST", intake+"/documents/upload", token, nil)
	step("[INTAKE] Describe documents", "POST", intake+"/documents", token, map[string]interface{}{
		"files": []map[string]interface{}{
			{"name": "marriage_certificate.pdf", "size": 120000, "type": "application/pdf"},
		},
	})

	// 4. History
	step("[CHAT] Load messages", "GET", "/v1/chat/sessions/"+session.Id+"/messages", token, nil)
	step("[CHAT] Delete session", "DELETE", "/v1/chat/sessions/"+session.Id, token, nil)

	color.Cyan("\n✅ Walkthrough finished")
}
