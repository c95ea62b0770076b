package shell

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/store"
)

var (
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = errors.New("all fields required")
	// ErrPasswordMismatch is returned when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// authenticate checks a login form against the store.
func authenticate(st *store.Store, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}
	ok, err := st.VerifyUser(email, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// register validates a sign-up form and creates the account.
func register(st *store.Store, email, password, confirm string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	created, err := st.CreateUser(email, password)
	if err != nil {
		return err
	}
	if !created {
		return ErrEmailTaken
	}
	return nil
}

func (s *Shell) showLogin() {
	s.win.SetTitle("TakeBook Login")

	email := widget.NewEntry()
	email.SetPlaceHolder("Email")
	email.SetText(s.store.Settings().GetOr(store.SettingLastEmail, ""))
	password := widget.NewPasswordEntry()
	password.SetPlaceHolder("Password")

	login := func() {
		if err := authenticate(s.store, email.Text, password.Text); err != nil {
			if !errors.Is(err, ErrMissingFields) && !errors.Is(err, ErrInvalidCredentials) {
				log.WithError(err).Error("login")
			}
			dialog.ShowError(err, s.win)
			return
		}
		s.user = strings.TrimSpace(email.Text)
		if err := s.store.Settings().Set(store.SettingLastEmail, s.user); err != nil {
			log.WithError(err).Warn("remember last email")
		}
		log.WithField("user", s.user).Info("logged in")
		s.showHome()
	}
	password.OnSubmitted = func(string) { login() }

	title := widget.NewLabelWithStyle("takebook", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	loginBtn := widget.NewButton("Log In", login)
	loginBtn.Importance = widget.HighImportance
	signupBtn := widget.NewButton("Create New Account", s.showSignup)
	signupBtn.Importance = widget.SuccessImportance

	s.win.SetContent(container.NewPadded(container.NewVBox(
		title,
		email,
		password,
		loginBtn,
		widget.NewSeparator(),
		signupBtn,
	)))
	s.win.Resize(fyne.NewSize(400, 420))
}

func (s *Shell) showSignup() {
	win := s.app.NewWindow("Sign Up for TakeBook")

	email := widget.NewEntry()
	email.SetPlaceHolder("Email address")
	password := widget.NewPasswordEntry()
	password.SetPlaceHolder("Password")
	confirm := widget.NewPasswordEntry()
	confirm.SetPlaceHolder("Confirm password")

	signup := widget.NewButton("Sign Up", func() {
		if err := register(s.store, email.Text, password.Text, confirm.Text); err != nil {
			dialog.ShowError(err, win)
			return
		}
		log.WithField("user", strings.TrimSpace(email.Text)).Info("account created")
		dialog.ShowInformation("Success", "Account created successfully!", s.win)
		win.Close()
	})
	signup.Importance = widget.SuccessImportance

	win.SetContent(container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle("Create Account", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		email,
		password,
		confirm,
		signup,
	)))
	win.Resize(fyne.NewSize(420, 380))
	win.Show()
}
