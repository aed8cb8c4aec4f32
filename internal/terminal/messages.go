package terminal

const msgSlidesHelp = `Commands: n - next page, p - previous page, + / - zoom, f - fullscreen, t - take quiz, q or esc - close.`

const msgQuizHelp = `Commands: A-F or 1-6 - choose an option, c - check / next / submit, b - previous question, q - leave the quiz.`

const msgQuizUnlocked = `You reached the last page. The quiz is unlocked: press t to take it.`

const msgQuizLocked = `Read the document to the last page to unlock the quiz.`

const msgNoQuiz = `No Quiz Available. The instructor hasn't added a quiz for this course yet.`

const msgViewerClosed = `Document closed.`

const msgSelectionLocked = `This question is already checked, the answer can not be changed.`

const msgPickOption = `Choose an option first.`

const msgUnknownCommand = `Unknown command, type h for help.`

const msgQuizLeft = `Quiz left without submitting.`

const msgNoSuchOption = `There is no such option for this question.`

const msgNoPrevious = `There is no previous question to go back to.`

const msgReportSaved = `Report saved to %s`

const msgReportFailed = `Could not save the report: %v`

const msgAnswerLocked = `Answer locked: this question was already checked, press c to see the feedback again.`
