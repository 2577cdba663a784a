package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

// SendEventEmail notifies one participant about an event status change.
// Failures are logged and never propagated; the mutation already committed.
func (s *SenderService) SendEventEmail(user db.User, event *db.Event, status string) {
	statusLocalized := statusTranslation(status, user.Language)

	emailData := entities.EventEmailData{
		UserName:           user.Name,
		EventTitle:         event.Title,
		EventCode:          event.Code,
		Address:            event.Address,
		StartTimeFormatted: event.StartTime.Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   event.EndTime.Format("02 Jan 2006 15:04 MST"),
		CurrentYear:        time.Now().Year(),
		Language:           user.Language,
		Status:             statusLocalized,
	}

	var emailSubject, plainTextBody string
	switch user.Language {
	case "es":
		emailSubject = fmt.Sprintf("Tu evento \"%s\" está %s - Código: %s", event.Title, statusLocalized, event.Code)
		plainTextBody = fmt.Sprintf(
			"Hola %s,\n\nEl evento \"%s\" al que te habías apuntado está %s.\n\n"+
				"Detalles:\n"+
				"Código: %s\n"+
				"Lugar: %s\n"+
				"Inicio: %s\n"+
				"Fin: %s\n\n"+
				"Gracias por usar Fitness Time.",
			user.Name, event.Title, statusLocalized, event.Code, event.Address,
			emailData.StartTimeFormatted, emailData.EndTimeFormatted,
		)
	case "it":
		emailSubject = fmt.Sprintf("Il tuo evento \"%s\" è %s - Codice: %s", event.Title, statusLocalized, event.Code)
		plainTextBody = fmt.Sprintf(
			"Ciao %s,\n\nL'evento \"%s\" a cui ti eri iscritto è %s.\n\n"+
				"Dettagli:\n"+
				"Codice: %s\n"+
				"Luogo: %s\n"+
				"Inizio: %s\n"+
				"Fine: %s\n\n"+
				"Grazie per aver scelto Fitness Time.",
			user.Name, event.Title, statusLocalized, event.Code, event.Address,
			emailData.StartTimeFormatted, emailData.EndTimeFormatted,
		)
	default:
		emailSubject = fmt.Sprintf("Your event \"%s\" is %s - Code: %s", event.Title, statusLocalized, event.Code)
		plainTextBody = fmt.Sprintf(
			"Hello %s,\n\nThe event \"%s\" you joined is %s.\n\n"+
				"Details:\n"+
				"Code: %s\n"+
				"Location: %s\n"+
				"Start: %s\n"+
				"End: %s\n\n"+
				"Thank you for using Fitness Time.",
			user.Name, event.Title, statusLocalized, event.Code, event.Address,
			emailData.StartTimeFormatted, emailData.EndTimeFormatted,
		)
	}

	tmplPath := filepath.Join("internal", "templates", "event_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: Error parsing email HTML template (%s): %v", tmplPath, err)
		return
	}

	var htmlBodyBuffer bytes.Buffer
	if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("ALERT: Error executing email HTML template for event %s: %v", event.Code, err)
	}
	htmlBody := htmlBodyBuffer.String()

	go func(toEmail, userName, subject, plainBody, htmlBodyContent string) {
		errEmail := SendEmailWithSendGrid(toEmail, userName, subject, plainBody, htmlBodyContent)
		if errEmail != nil {
			log.Printf("ALERT (async): Email for event %s failed: %v", event.Code, errEmail)
		}
	}(user.Email, user.Name, emailSubject, plainTextBody, htmlBody)
}

func (s *SenderService) SendEventSMS(user db.User, event *db.Event, status string) {
	if user.Phone == "" {
		return
	}
	statusLocalized := statusTranslation(status, user.Language)

	var smsMessage string
	switch user.Language {
	case "es":
		smsMessage = fmt.Sprintf("Fitness Time: ¡El evento \"%s\" está %s!\nInicio: %s.\nMás detalles en tu correo.",
			event.Title, statusLocalized,
			event.StartTime.Format("02/01 15:04"),
		)
	case "it":
		smsMessage = fmt.Sprintf("Fitness Time: L'evento \"%s\" è %s!\nInizio: %s.\nAltri dettagli nella tua email.",
			event.Title, statusLocalized,
			event.StartTime.Format("02/01 15:04"),
		)
	default:
		smsMessage = fmt.Sprintf("Fitness Time: Event \"%s\" has been %s!\nStart: %s.\nMore details in your email.",
			event.Title, statusLocalized,
			event.StartTime.Format("02/01 15:04"),
		)
	}

	go func(phone, body string) {
		if errSMS := SendSMS(phone, body); errSMS != nil {
			log.Printf("ALERT: SMS for event %s to %s failed: %v", event.Code, phone, errSMS)
		}
	}(user.Phone, smsMessage)
}

func statusTranslation(status, lang string) string {
	switch lang {
	case "es":
		switch status {
		case "active":
			return "activo"
		case "finished":
			return "finalizado"
		case "canceled", "cancelled":
			return "cancelado"
		case "rescheduled":
			return "reprogramado"
		}
	case "it":
		switch status {
		case "active":
			return "attivo"
		case "finished":
			return "finito"
		case "canceled", "cancelled":
			return "annullato"
		case "rescheduled":
			return "riprogrammato"
		}
	}
	// Default: English
	return status
}
