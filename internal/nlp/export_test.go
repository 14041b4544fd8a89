package nlp

var CloudSpans = cloudSpans
