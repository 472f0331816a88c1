package services

// Services defined in this package:
// - RegistrationService: users, sessions, the course catalog and enrollments
