package config

import (
	"errors"
	"fmt"
	"time"

	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/scrapers/tgnvoda"
	"tgnvoda/lib/configutil"
)

const (
	DefaultFile         = "tgnvoda.json5"
	DefaultScanInterval = 1800
)

type Account struct {
	// Name identifies the account in logs, sensors and on the command line,
	// it defaults to "tgn_voda_<account_id>".
	Name      string `json:"name"`
	Login     string `json:"login"`
	Password  string `json:"password"`
	AccountID string `json:"account_id"`
	// VerifySSL defaults to true when omitted.
	VerifySSL *bool  `json:"verify_ssl"`
	CABundle  string `json:"ca_bundle"`
	// ScanInterval is in seconds.
	ScanInterval     int  `json:"scan_interval"`
	VerifyLogin      bool `json:"verify_login"`
	CloudflareBypass bool `json:"cloudflare_bypass"`
}

func (a Account) EntryID() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("tgn_voda_%s", a.AccountID)
}

// UniqueID is the login and account pair, two entries may not share it.
func (a Account) UniqueID() string {
	return fmt.Sprintf("%s::%s", a.Login, a.AccountID)
}

func (a Account) Title() string {
	return fmt.Sprintf("TGN Voda %s", a.AccountID)
}

func (a Account) Interval() time.Duration {
	if a.ScanInterval <= 0 {
		return DefaultScanInterval * time.Second
	}
	return time.Duration(a.ScanInterval) * time.Second
}

func (a Account) TLSPolicy() tgnvoda.TLSPolicy {
	verify := true
	if a.VerifySSL != nil {
		verify = *a.VerifySSL
	}
	return tgnvoda.ParseTLSPolicy(verify, a.CABundle)
}

func (a Account) ClientOptions() tgnvoda.ClientOptions {
	return tgnvoda.ClientOptions{
		Credentials: tgnvoda.Credentials{
			Login:     a.Login,
			Password:  a.Password,
			AccountID: a.AccountID,
		},
		TLS:              a.TLSPolicy(),
		VerifyLogin:      a.VerifyLogin,
		CloudflareBypass: a.CloudflareBypass,
	}
}

type Config struct {
	Debug bool                 `json:"debug"`
	Otlp  telemetry.OtlpConfig `json:"otlp"`
	// Listen is the address of the daemon's http api, empty disables it.
	Listen   string    `json:"listen"`
	Accounts []Account `json:"accounts"`
}

func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("at least one account is required")
	}

	errs := []error{}
	seenUnique := map[string]bool{}
	seenEntry := map[string]bool{}
	for i, a := range c.Accounts {
		if a.Login == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: login is required", i))
		}
		if a.Password == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: password is required", i))
		}
		if a.AccountID == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: account_id is required", i))
		}
		if a.ScanInterval < 0 {
			errs = append(errs, fmt.Errorf("accounts[%d]: scan_interval must not be negative", i))
		}
		if seenUnique[a.UniqueID()] {
			errs = append(errs, fmt.Errorf("accounts[%d]: %s is already configured", i, a.UniqueID()))
		}
		if seenEntry[a.EntryID()] {
			errs = append(errs, fmt.Errorf("accounts[%d]: name %s is already used", i, a.EntryID()))
		}
		seenUnique[a.UniqueID()] = true
		seenEntry[a.EntryID()] = true
	}
	return errors.Join(errs...)
}

// Find returns the account with the given entry id, or the only account
// when name is empty and exactly one is configured.
func (c *Config) Find(name string) (Account, error) {
	if name == "" {
		if len(c.Accounts) == 1 {
			return c.Accounts[0], nil
		}
		return Account{}, fmt.Errorf("%d accounts configured, pick one by name", len(c.Accounts))
	}
	for _, a := range c.Accounts {
		if a.EntryID() == name || a.AccountID == name {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("no account named %s", name)
}

// Read loads a config file along with its local overrides, when path is empty
// tgnvoda.json5 is searched for from the working directory upwards.
func Read(path string) (Config, error) {
	if path == "" {
		return configutil.ReadRecursively[Config](DefaultFile)
	}
	return configutil.ReadConfig[Config](path)
}
