package notifier

// INotifier delivers templated notifications (email in production, files in
// development).
type INotifier interface {
	NotifyFromTemplate(to string, subject string, templateName string, data any) error
}
