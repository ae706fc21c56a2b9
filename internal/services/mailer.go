package services

import (
	"fmt"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/pkg/utils"
	"gopkg.in/gomail.v2"
)

// Mailer sends inactivity reminders. The inactivity checker only cares about
// success or failure; transport and templating live behind this interface.
type Mailer interface {
	SendInactivityReminder(student models.Student, lastSubmission time.Time) error
}

// SMTPMailer delivers reminders over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendInactivityReminder(student models.Student, lastSubmission time.Time) error {
	if !utils.IsValidEmail(student.Email) {
		return fmt.Errorf("invalid email address %q for student %s", student.Email, student.ID)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", student.Email)
	msg.SetHeader("Subject", "Reminder: Stay Active in Problem Solving")
	msg.SetBody("text/html", reminderBody(student, lastSubmission))

	return m.dialer.DialAndSend(msg)
}

func reminderBody(student models.Student, lastSubmission time.Time) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #4a4a4a;">Hello %s,</h2>
  <p>We noticed that you haven't solved any problems on Codeforces since <strong>%s</strong>.</p>
  <p>Consistent practice is key to improving your problem-solving skills. We encourage you to get back to solving problems regularly.</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Tips to stay consistent:</strong></p>
    <ul>
      <li>Set a goal to solve at least one problem daily</li>
      <li>Participate in weekly contests</li>
      <li>Focus on topics you find challenging</li>
    </ul>
  </div>
  <p>Happy Coding!</p>
  <hr>
  <p style="font-size: 12px; color: #777;">
    This is an automated reminder. You've received %d reminder(s) so far.
    If you'd like to stop receiving these reminders, please contact your instructor.
  </p>
</div>`, student.Name, lastSubmission.Format("January 2, 2006"), student.RemindersSent+1)
}
