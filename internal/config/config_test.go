package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tgnvoda/internal/scrapers/tgnvoda"

	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tgnvoda.json5")
	err := os.WriteFile(path, []byte(`{
		debug: false,
		accounts: [
			{
				name: "home",
				login: "user@example.com",
				password: "placeholder",
				account_id: "1234567",
				ca_bundle: "/etc/ssl/tgn.pem",
			},
		],
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "tgnvoda.local.json5"), []byte(`{debug: true}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	config, err := Read(path)
	require.NoError(t, err)
	require.True(t, config.Debug)
	require.Len(t, config.Accounts, 1)

	account := config.Accounts[0]
	require.Equal(t, "home", account.EntryID())
	require.Equal(t, "user@example.com::1234567", account.UniqueID())
	require.Equal(t, 30*time.Minute, account.Interval())
	require.Equal(t, tgnvoda.TLSPolicy{Mode: tgnvoda.TLSVerifyCABundle, CABundlePath: "/etc/ssl/tgn.pem"}, account.TLSPolicy())
}

func TestAccountDefaults(t *testing.T) {
	off := false
	account := Account{Login: "a", Password: "b", AccountID: "42", ScanInterval: 60, VerifySSL: &off}

	require.Equal(t, "tgn_voda_42", account.EntryID())
	require.Equal(t, "TGN Voda 42", account.Title())
	require.Equal(t, time.Minute, account.Interval())
	require.Equal(t, tgnvoda.TLSPolicy{Mode: tgnvoda.TLSVerifyDisabled}, account.TLSPolicy())

	account.VerifySSL = nil
	require.Equal(t, tgnvoda.TLSPolicy{Mode: tgnvoda.TLSVerifySystem}, account.TLSPolicy())
}

func TestValidate(t *testing.T) {
	valid := Account{Login: "a", Password: "b", AccountID: "1"}

	require.Error(t, (&Config{}).Validate())
	require.NoError(t, (&Config{Accounts: []Account{valid}}).Validate())

	err := (&Config{Accounts: []Account{{Login: "a"}}}).Validate()
	require.ErrorContains(t, err, "password is required")
	require.ErrorContains(t, err, "account_id is required")

	duplicate := valid
	duplicate.Name = "other"
	err = (&Config{Accounts: []Account{valid, duplicate}}).Validate()
	require.ErrorContains(t, err, "a::1 is already configured")
}

func TestFind(t *testing.T) {
	config := Config{Accounts: []Account{
		{Name: "home", AccountID: "1"},
		{AccountID: "2"},
	}}

	account, err := config.Find("home")
	require.NoError(t, err)
	require.Equal(t, "1", account.AccountID)

	account, err = config.Find("2")
	require.NoError(t, err)
	require.Equal(t, "tgn_voda_2", account.EntryID())

	_, err = config.Find("")
	require.Error(t, err)

	_, err = config.Find("missing")
	require.Error(t, err)
}
