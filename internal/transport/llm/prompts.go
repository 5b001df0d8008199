package llm

const (
	correctionSystemPrompt = "당신은 교회 예배 자막을 보정하는 전문가입니다. " +
		"문법 오류를 수정하고 자연스러운 문장으로 만들어주세요."

	correctionUserPrompt = `다음은 교회 예배 자막입니다. 문법 오류를 수정하고, 불완전한 문장을 완성하여 자연스러운 문장으로 만들어주세요.
원본 자막의 의미와 내용은 그대로 유지하되, 문맥에 맞게 보정해주세요.
설교, 찬양, 기도 등의 교회 예배 컨텍스트를 고려하여 보정해주세요.

자막:
%s

보정된 자막:`

	extractionSystemPrompt = "You are an expert at extracting metadata from sermon transcripts. Return only valid JSON."

	extractionUserPrompt = `다음은 교회 설교 원문의 일부입니다. 다음 정보를 추출하여 JSON 형식으로 반환해주세요:
- 설교자 (preacher): 설교를 한 사람의 이름
- 설교주제 (sermon_topic): 설교의 주제나 제목
- 성경말씀 (bible_verse): 인용된 성경 구절 (책명 장:절 형식, 예: "요한복음 3:16")
- 핵심 키워드 (keywords): 설교의 핵심 키워드 3-5개 (배열)
%s
설교 원문:
%s

JSON 형식:
{
  "preacher": "설교자 이름",
  "sermon_topic": "설교 주제",
  "bible_verse": "성경 구절",
  "keywords": ["키워드1", "키워드2", "키워드3"]
}`

	answerSystemPrompt = "당신은 교회 예배 내용에 대한 질문에 답변하는 전문가입니다. " +
		"제공된 문서를 바탕으로 정확하고 상세하게 답변해주세요."

	answerUserPrompt = `다음 문서들을 참고하여 질문에 답변하세요. 문서의 내용을 바탕으로 정확하고 상세하게 답변해주세요.

문서들:
%s

질문: %s

답변:`
)
